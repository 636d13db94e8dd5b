package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manojoshi/sdborm/codec"
)

// run executes the root command with args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "sdbcodec", cmd.Use)

	for _, name := range []string{"encode", "decode", "match"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
			assert.NotNil(t, sub.Flags().Lookup("kind"))
		})
	}

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestEncode(t *testing.T) {
	out, err := run(t, "encode", "--", "-1", "0", "1")
	require.NoError(t, err)
	assert.Equal(t, "-1\t2999999999\n0\t3000000000\n1\t3000000001\n", out)

	out, err = run(t, "encode", "--kind", "int32", "--padding", "10", "--offset", "0", "852516352")
	require.NoError(t, err)
	assert.Equal(t, "852516352\t0852516352\n", out)

	out, err = run(t, "encode", "--kind", "float", "--int", "3", "--frac", "2", "--offset", "0", "--", "-1.5", "999.99")
	require.NoError(t, err)
	assert.Equal(t, "-1.5\t099850\n999.99\t199999\n", out)
}

func TestEncode_JSON(t *testing.T) {
	out, err := run(t, "--format", "json", "encode", "--kind", "int64", "0")
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   []Row  `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, []Row{{Input: "0", Output: "09223372036854775808"}}, resp.Data)
}

func TestEncode_Errors(t *testing.T) {
	_, err := run(t, "encode", "5000000000")
	assert.ErrorIs(t, err, codec.ErrOffsetRange)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	_, err = run(t, "encode", "abc")
	assert.Equal(t, ExitFailure, GetExitCode(err))

	_, err = run(t, "encode", "--kind", "uint8", "1")
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = run(t, "encode", "--padding", "3", "1")
	assert.ErrorIs(t, err, codec.ErrConfigurationRange)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = run(t, "--format", "yaml", "encode", "1")
	assert.Error(t, err)
}

func TestDecode(t *testing.T) {
	out, err := run(t, "decode", "2999999999", "3000000000")
	require.NoError(t, err)
	assert.Equal(t, "2999999999\t-1\n3000000000\t0\n", out)

	out, err = run(t, "decode", "--kind", "float", "--int", "3", "--frac", "2", "--offset", "0", "000001")
	require.NoError(t, err)
	assert.Equal(t, "000001\t-999.99\n", out)

	_, err = run(t, "decode", "5147483648")
	assert.ErrorIs(t, err, codec.ErrMagnitudeExceedsTypeMax)

	_, err = run(t, "decode", "12ab")
	assert.ErrorIs(t, err, codec.ErrNotANumber)
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"eq", []string{"match", "color", "blue"}, `"color" = "blue"`},
		{"in numeric", []string{"match", "--kind", "int32", "--padding", "3", "--offset", "0", "size", "5", "7"}, `"size" in ("005","007")`},
		{"every", []string{"match", "--every", "color", "blue"}, `every("color") = "blue"`},
		{"item name", []string{"match", "itemName()", "u1"}, `itemName() = "u1"`},
		{"null", []string{"match", "deleted_at", "--null"}, `"deleted_at" is null`},
		{"not null", []string{"match", "--not-null", "deleted_at"}, `"deleted_at" is not null`},
		{"quote doubling", []string{"match", "title", `say "hi"`}, `"title" = "say ""hi"""`},
		{"single quote", []string{"match", "--single-quote", "title", "it's"}, `"title" = 'it''s'`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			require.NoError(t, err)
			_, frag, ok := strings.Cut(strings.TrimSuffix(out, "\n"), "\t")
			require.True(t, ok, out)
			assert.Equal(t, tt.want, frag)
		})
	}
}

func TestMatch_Errors(t *testing.T) {
	_, err := run(t, "match", "color")
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = run(t, "match", "color", "--null", "blue")
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = run(t, "match", "color", "--null", "--not-null")
	assert.Error(t, err)

	_, err = run(t, "match", "--kind", "int32", "age", "9999999999")
	assert.ErrorIs(t, err, codec.ErrOffsetRange)
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sdborm.yaml")
	require.NoError(t, os.WriteFile(path, []byte("codecs:\n  int32:\n    padding: 12\n"), 0o600))

	out, err := run(t, "--config", path, "encode", "1")
	require.NoError(t, err)
	assert.Equal(t, "1\t003000000001\n", out)

	_, err = run(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "encode", "1")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
