package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCmd(t *testing.T) {
	original := version
	defer func() { version = original }()

	for _, v := range []string{"dev", "0.3.1"} {
		t.Run(v, func(t *testing.T) {
			version = v
			out, err := run(t, nil, "version")
			require.NoError(t, err)
			assert.Equal(t, "chatdocs version "+v+"\n", out)
		})
	}
}
