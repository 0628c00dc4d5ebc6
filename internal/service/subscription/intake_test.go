package subscription

import (
	"errors"
	"testing"

	"github.com/ignite/newsletter/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert_ValidFormRoundTrips(t *testing.T) {
	pairs := []Form{
		{Name: "le guin", Email: "ursula_le_guin@gmail.com"},
		{Name: "Octavia E. Butler", Email: "octavia@example.org"},
		{Name: "  Ted Chiang", Email: "ted.chiang+sf@mail.example.com"},
	}
	for _, f := range pairs {
		sub, err := Convert(f)
		require.NoError(t, err, f)
		assert.Equal(t, f.Name, sub.Name.String())
		assert.Equal(t, f.Email, sub.Email.String())
	}
}

func TestConvert_NameCheckedBeforeEmail(t *testing.T) {
	_, err := Convert(Form{Name: "", Email: "definitely-not-an-email"})
	require.Error(t, err)

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "name", verr.Field)
}

func TestConvert_InvalidEmail(t *testing.T) {
	_, err := Convert(Form{Name: "Ursula", Email: "definitely-not-an-email"})

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "email", verr.Field)
}

func TestConvert_EmptyFields(t *testing.T) {
	cases := map[string]Form{
		"empty name":  {Name: "", Email: "ursula_le_guin@gmail.com"},
		"empty email": {Name: "Ursula", Email: ""},
		"both empty":  {},
	}
	for desc, f := range cases {
		_, err := Convert(f)
		assert.Error(t, err, desc)
	}
}
