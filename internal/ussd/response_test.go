package ussd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResponse_Wire(t *testing.T) {
	tests := []struct {
		name string
		resp Response
		want string
	}{
		{name: "continue", resp: Response{Text: "Menu", Continue: true}, want: "CON Menu"},
		{name: "end", resp: Response{Text: "Bye"}, want: "END Bye"},
		{name: "empty end", resp: Response{}, want: "END "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.resp.Wire())
		})
	}
}

func TestJoinText(t *testing.T) {
	assert.Equal(t, "b", joinText("", "b"))
	assert.Equal(t, "a", joinText("a", ""))
	assert.Equal(t, "a\nb", joinText("a", "b"))
}
