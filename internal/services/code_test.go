package services

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateConfirmationCodeUsesSource(t *testing.T) {
	src := &seqSource{digits: []int{9, 0, 1, 8, 2, 7}}
	assert.Equal(t, "901827", GenerateConfirmationCode(ConfirmationCodeLength, src))
}

func TestGenerateConfirmationCodeCrypto(t *testing.T) {
	digits := regexp.MustCompile(`^[0-9]{6}$`)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code := GenerateConfirmationCode(ConfirmationCodeLength, CryptoSource{})
		assert.Regexp(t, digits, code)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestValidUsername(t *testing.T) {
	for _, ok := range []string{"alice", "a.b@c+d-e_f", "Вася", "user42"} {
		assert.True(t, ValidUsername(ok), ok)
	}
	for _, bad := range []string{"", "with space", "semi;colon", "slash/"} {
		assert.False(t, ValidUsername(bad), bad)
	}
}

func TestValidSlug(t *testing.T) {
	assert.True(t, ValidSlug("sci-fi_2"))
	assert.False(t, ValidSlug("sci fi"))
	assert.False(t, ValidSlug("фантастика"))
}
