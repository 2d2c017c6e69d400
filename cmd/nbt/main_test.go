package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Neumenon/nbt/config"
	"github.com/Neumenon/nbt/nbt"
	"github.com/Neumenon/nbt/stream"
)

type result struct {
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	code   int
}

func runCLI(t *testing.T, stdin []byte, args ...string) result {
	t.Helper()
	t.Setenv(config.EnvVar, "")
	t.Setenv("NBT_DEBUG", "")

	res := result{stdout: new(bytes.Buffer), stderr: new(bytes.Buffer)}
	res.code = run(args, bytes.NewReader(stdin), res.stdout, res.stderr)
	return res
}

func playerNBT(t *testing.T, c stream.Compression) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := stream.NewWriter(&buf, c)
	require.NoError(t, err)
	require.NoError(t, w.WriteRoot(nbt.Named("player", nbt.MustParse(`{name: Steve, health: 20s}`))))
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestRun_Usage(t *testing.T) {
	res := runCLI(t, nil)
	assert.Equal(t, exitUsage, res.code)
	assert.Contains(t, res.stderr.String(), "Usage:")

	res = runCLI(t, nil, "help")
	assert.Equal(t, exitOK, res.code)
	for _, name := range commandOrder {
		assert.Contains(t, res.stdout.String(), "nbt "+name)
	}

	res = runCLI(t, nil, "frobnicate")
	assert.Equal(t, exitUsage, res.code)
	assert.Contains(t, res.stderr.String(), "unknown command: frobnicate")
}

func TestRun_Version(t *testing.T) {
	res := runCLI(t, nil, "version")
	assert.Equal(t, exitOK, res.code)
	assert.Equal(t, "nbt "+version+"\n", res.stdout.String())
}

func TestRun_CommandHelp(t *testing.T) {
	res := runCLI(t, nil, "encode", "--help")
	require.Equal(t, exitOK, res.code, res.stderr.String())
	out := res.stdout.String()
	assert.Contains(t, out, "nbt encode")
	assert.Contains(t, out, "--compression")
	assert.Contains(t, out, "--name")
	assert.NotContains(t, out, "--diag")
}

func TestRun_BadFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"dump", "--bogus"}},
		{"flag of other command", []string{"dump", "--compression", "none"}},
		{"bad compression", []string{"encode", "-c", "brotli"}},
		{"bad max depth", []string{"dump", "--max-depth", "0"}},
		{"too many files", []string{"dump", "a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runCLI(t, nil, tt.args...)
			assert.Equal(t, exitUsage, res.code)
			assert.NotEmpty(t, res.stderr.String())
		})
	}
}

func TestDump(t *testing.T) {
	for _, c := range []stream.Compression{stream.CompressionNone, stream.CompressionGzip, stream.CompressionZstd} {
		t.Run(c.String(), func(t *testing.T) {
			res := runCLI(t, playerNBT(t, c), "dump")
			require.Equal(t, exitOK, res.code, res.stderr.String())
			assert.Equal(t, "player: {name:Steve,health:20s}\n", res.stdout.String())
		})
	}
}

func TestDump_PrettySorted(t *testing.T) {
	res := runCLI(t, playerNBT(t, stream.CompressionNone), "dump", "--pretty", "--sort-keys")
	require.Equal(t, exitOK, res.code, res.stderr.String())
	assert.Equal(t, "player: {\n  health: 20s,\n  name: Steve\n}\n", res.stdout.String())
}

func TestDump_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "player.dat")
	require.NoError(t, os.WriteFile(path, playerNBT(t, stream.CompressionGzip), 0o644))

	res := runCLI(t, nil, "dump", path)
	require.Equal(t, exitOK, res.code, res.stderr.String())
	assert.Equal(t, "player: {name:Steve,health:20s}\n", res.stdout.String())
}

func TestDump_Errors(t *testing.T) {
	res := runCLI(t, nil, "dump", filepath.Join(t.TempDir(), "missing.dat"))
	assert.Equal(t, exitFailure, res.code)

	res = runCLI(t, nil, "dump")
	assert.Equal(t, exitFailure, res.code)
	assert.Contains(t, res.stderr.String(), stream.ErrNoRoot.Error())

	res = runCLI(t, []byte{0x0A, 0x00}, "dump")
	assert.Equal(t, exitFailure, res.code)

	res = runCLI(t, playerNBT(t, stream.CompressionNone), "dump", "--max-depth", "1")
	assert.Equal(t, exitOK, res.code, "one compound fits depth 1")
}

func TestEncode_RoundTrip(t *testing.T) {
	res := runCLI(t, []byte(`{name: Steve, health: 20s}`), "encode", "-c", "none", "-n", "player")
	require.Equal(t, exitOK, res.code, res.stderr.String())

	nt, err := nbt.Unmarshal(res.stdout.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "player", nt.Name)
	assert.True(t, nbt.Equal(nbt.MustParse(`{name: Steve, health: 20s}`), nt.Tag))

	back := runCLI(t, res.stdout.Bytes(), "dump")
	require.Equal(t, exitOK, back.code, back.stderr.String())
	assert.Equal(t, "player: {name:Steve,health:20s}\n", back.stdout.String())
}

func TestEncode_NamedInput(t *testing.T) {
	res := runCLI(t, []byte("Level: {x: 1}\n"), "encode", "-c", "none")
	require.Equal(t, exitOK, res.code, res.stderr.String())

	nt, err := nbt.Unmarshal(res.stdout.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "Level", nt.Name)

	res = runCLI(t, []byte("Level: {x: 1}\n"), "encode", "-c", "none", "--name", "other")
	require.Equal(t, exitOK, res.code, res.stderr.String())
	nt, err = nbt.Unmarshal(res.stdout.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "other", nt.Name)
}

func TestEncode_DumpOutputReencodes(t *testing.T) {
	dumped := runCLI(t, playerNBT(t, stream.CompressionNone), "dump", "--pretty")
	require.Equal(t, exitOK, dumped.code, dumped.stderr.String())

	res := runCLI(t, dumped.stdout.Bytes(), "encode", "-c", "none")
	require.Equal(t, exitOK, res.code, res.stderr.String())
	assert.Equal(t, playerNBT(t, stream.CompressionNone), res.stdout.Bytes())
}

func TestEncode_ToFileUsesDefaultCompression(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.dat")

	res := runCLI(t, []byte(`{a: 1b}`), "encode", "-o", path)
	require.Equal(t, exitOK, res.code, res.stderr.String())
	assert.Empty(t, res.stdout.String())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, stream.CompressionGzip, stream.DetectCompression(data))

	roots, err := stream.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.True(t, nbt.Equal(nbt.MustParse(`{a: 1b}`), roots[0].Tag))
}

func TestEncode_Errors(t *testing.T) {
	res := runCLI(t, []byte(`{a: 1; b: 2}`), "encode")
	assert.Equal(t, exitFailure, res.code)

	res = runCLI(t, []byte(`[1, "two"]`), "encode")
	assert.Equal(t, exitFailure, res.code)
	assert.Contains(t, res.stderr.String(), "nbt encode:")

	res = runCLI(t, []byte(`[[[1]]]`), "encode", "--max-depth", "2")
	assert.Equal(t, exitFailure, res.code)
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "nbt.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("compression: none\nsort_keys: true\n"), 0o644))

	res := runCLI(t, []byte(`{b: 1, a: 2}`), "encode", "--config", cfgPath)
	require.Equal(t, exitOK, res.code, res.stderr.String())
	assert.Equal(t, stream.CompressionNone, stream.DetectCompression(res.stdout.Bytes()))

	want, err := nbt.MarshalCanonical(nbt.Root(nbt.MustParse(`{b: 1, a: 2}`)))
	require.NoError(t, err)
	assert.Equal(t, want, res.stdout.Bytes())

	// Flags win over the file.
	res = runCLI(t, []byte(`{a: 1}`), "encode", "--config", cfgPath, "-c", "zlib")
	require.Equal(t, exitOK, res.code, res.stderr.String())
	assert.Equal(t, stream.CompressionZlib, stream.DetectCompression(res.stdout.Bytes()))

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("compresion: none\n"), 0o644))
	res = runCLI(t, []byte(`{}`), "encode", "--config", bad)
	assert.Equal(t, exitFailure, res.code)
}

func TestJSON(t *testing.T) {
	res := runCLI(t, playerNBT(t, stream.CompressionGzip), "to-json")
	require.Equal(t, exitOK, res.code, res.stderr.String())
	assert.Equal(t, `{"health":20,"name":"Steve"}`+"\n", res.stdout.String())

	res = runCLI(t, playerNBT(t, stream.CompressionGzip), "to-json", "--pretty")
	require.Equal(t, exitOK, res.code, res.stderr.String())
	assert.Equal(t, "{\n  \"health\": 20,\n  \"name\": \"Steve\"\n}\n", res.stdout.String())

	res = runCLI(t, []byte(`{"a": 1, "b": [1.5, 2]}`), "from-json", "-c", "none", "-n", "doc")
	require.Equal(t, exitOK, res.code, res.stderr.String())
	dumped := runCLI(t, res.stdout.Bytes(), "dump")
	require.Equal(t, exitOK, dumped.code, dumped.stderr.String())
	assert.Equal(t, "doc: {a:1,b:[1.5,2d]}\n", dumped.stdout.String())

	res = runCLI(t, []byte(`{"a": `), "from-json")
	assert.Equal(t, exitFailure, res.code)
}

func TestToCBOR(t *testing.T) {
	res := runCLI(t, playerNBT(t, stream.CompressionNone), "to-cbor")
	require.Equal(t, exitOK, res.code, res.stderr.String())

	tag, err := nbt.FromCBOR(res.stdout.Bytes())
	require.NoError(t, err)
	c, err := tag.AsCompound()
	require.NoError(t, err)
	name, ok := c.Get("name")
	require.True(t, ok)
	s, err := name.AsString()
	require.NoError(t, err)
	assert.Equal(t, "Steve", s)

	res = runCLI(t, playerNBT(t, stream.CompressionNone), "to-cbor", "--diag")
	require.Equal(t, exitOK, res.code, res.stderr.String())
	assert.Contains(t, res.stdout.String(), `"name": "Steve"`)
	assert.True(t, strings.HasSuffix(res.stdout.String(), "\n"))
}

func TestSize(t *testing.T) {
	data := playerNBT(t, stream.CompressionGzip)
	res := runCLI(t, data, "size")
	require.Equal(t, exitOK, res.code, res.stderr.String())

	want := nbt.NamedSize(nbt.Named("player", nbt.MustParse(`{name: Steve, health: 20s}`)))
	assert.Equal(t, "player\tCompound\t"+strconv.Itoa(want)+"\n", res.stdout.String())
}

func TestHash(t *testing.T) {
	res := runCLI(t, playerNBT(t, stream.CompressionLZ4), "hash")
	require.Equal(t, exitOK, res.code, res.stderr.String())

	d, err := stream.Fingerprint(nbt.Named("player", nbt.MustParse(`{health: 20s, name: Steve}`)))
	require.NoError(t, err)
	assert.Equal(t, d.String()+"  player\n", res.stdout.String())
}

func TestDebugLogging(t *testing.T) {
	t.Setenv(config.EnvVar, "")
	t.Setenv("NBT_DEBUG", "1")

	var stdout, stderr bytes.Buffer
	code := run([]string{"dump"}, bytes.NewReader(playerNBT(t, stream.CompressionZstd)), &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())

	logs := stderr.String()
	assert.Contains(t, logs, "level=DEBUG")
	assert.Contains(t, logs, "compression=zstd")
	assert.Contains(t, logs, "name=player")
}
