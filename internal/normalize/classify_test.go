package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cyra/logaudit/internal/audit"
)

func TestClassifyHTTP(t *testing.T) {
	tests := []struct {
		name string
		ua   string
		want audit.AccessPath
	}{
		{name: "when quoted git client", ua: `"git/2.17.1"`, want: audit.AccessPathGit},
		{name: "when unquoted git client", ua: "git/1.8.3.1", want: audit.AccessPathGit},
		{name: "when JGit client", ua: `"JGit/4.11.0"`, want: audit.AccessPathRESTAPI},
		{name: "when browser", ua: `"Mozilla/5.0 (X11; Linux x86_64)"`, want: audit.AccessPathRESTAPI},
		{name: "when user agent is absent", ua: "-", want: audit.AccessPathRESTAPI},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyHTTP(tt.ua))
		})
	}
}

func TestClassifySSH(t *testing.T) {
	assert.Equal(t, audit.AccessPathSSHCommand, ClassifySSH())
}
