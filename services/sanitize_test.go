package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Confirmed  ", "Confirmed"},
		{"<b>Road</b> & drain", "Road & drain"},
		{"<script>alert(1)</script>ok", "ok"},
		{"   ", ""},
		{"a < b", "a < b"},
		{"<img src=x onerror=alert(1)>", ""},
		{"&lt;img src=x onerror=alert(1)&gt;", ""},
		{"&amp;lt;script&amp;gt;alert(1)&amp;lt;/script&amp;gt;done", "done"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanText(tt.in), tt.in)
	}
}

func TestCleanText_NoTagReassembled(t *testing.T) {
	for _, in := range []string{
		"<<img>img src=x onerror=alert(1)>",
		"<<b>script>alert(1)<</b>/script>",
	} {
		assert.NotContains(t, CleanText(in), "<img", in)
		assert.NotContains(t, CleanText(in), "<script", in)
	}
}
