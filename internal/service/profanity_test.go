package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProfanityFilter_Censor(t *testing.T) {
	f := NewProfanityFilter()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"clean text", "great bassline", "great bassline"},
		{"single word", "this is shit", "this is ****"},
		{"case insensitive", "DAMN that drop", "**** that drop"},
		{"longest match", "motherfucker", "************"},
		{"punctuation boundary", "jerk!", "****!"},
		{"inside another word", "classic assessment", "classic assessment"},
		{"several words", "damn, shitty mix", "****, ****** mix"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Censor(tt.in))
			assert.Equal(t, tt.in != tt.want, f.Contains(tt.in))
		})
	}
}

func TestProfanityFilter_CustomWords(t *testing.T) {
	f := NewProfanityFilter("autotune", " ")
	assert.Equal(t, "too much ********", f.Censor("too much Autotune"))
	assert.False(t, f.Contains("damn"))
}
