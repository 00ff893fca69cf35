package version

import (
	"bytes"
	"encoding/json"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helgo/places/internal/appcontext"
)

func TestVersion(t *testing.T) {
	cmd := NewCommand(&appcontext.Mock{})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(nil)
	require.NoError(t, cmd.Execute())

	var info Info
	require.NoError(t, json.Unmarshal(out.Bytes(), &info))
	assert.Equal(t, "test", info.Version)
	assert.Equal(t, runtime.Version(), info.GoVersion)
}
