// bench - NBT size benchmark runner
//
// Compares one NBT document across encodings:
//   - Binary NBT, bare and under each supported compression
//   - SNBT compact text
//   - JSON and CBOR bridges
//
// Inputs are NBT files given as arguments; with none, a built-in synthetic
// corpus is measured. Output: CSV and markdown summary.
package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/pflag"

	"github.com/Neumenon/nbt/nbt"
	"github.com/Neumenon/nbt/stream"
)

var compressions = []stream.Compression{
	stream.CompressionGzip,
	stream.CompressionZlib,
	stream.CompressionZstd,
	stream.CompressionLZ4,
}

type CaseResult struct {
	Name       string
	RawBytes   int
	Compressed map[stream.Compression]int
	SNBTBytes  int
	JSONBytes  int
	CBORBytes  int
}

type benchCase struct {
	name string
	root nbt.NamedTag
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("bench", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	outDir := fs.StringP("output", "o", ".", "directory for bench_results.csv and BENCH.md")
	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return 0
		}
		return 2
	}

	cases, err := loadCases(fs.Args())
	if err != nil {
		fmt.Fprintf(stderr, "bench: %v\n", err)
		return 1
	}

	fmt.Fprintf(stderr, "NBT Benchmark Runner\n")
	fmt.Fprintf(stderr, "====================\n")
	fmt.Fprintf(stderr, "Corpus: %d cases\n\n", len(cases))

	var results []CaseResult
	for _, c := range cases {
		r, err := measure(c)
		if err != nil {
			fmt.Fprintf(stderr, "Skip %s: %v\n", c.name, err)
			continue
		}
		results = append(results, r)
	}
	if len(results) == 0 {
		fmt.Fprintln(stderr, "bench: no case could be measured")
		return 1
	}

	csvPath := filepath.Join(*outDir, "bench_results.csv")
	if err := writeFile(csvPath, func(w io.Writer) { writeCSV(w, results) }); err != nil {
		fmt.Fprintf(stderr, "bench: %v\n", err)
		return 1
	}
	fmt.Fprintf(stderr, "CSV written to: %s\n", csvPath)

	mdPath := filepath.Join(*outDir, "BENCH.md")
	if err := writeFile(mdPath, func(w io.Writer) { writeMarkdown(w, results) }); err != nil {
		fmt.Fprintf(stderr, "bench: %v\n", err)
		return 1
	}
	fmt.Fprintf(stderr, "Markdown written to: %s\n", mdPath)

	total := totals(results)
	fmt.Fprintf(stdout, "\n=== SUMMARY ===\n")
	fmt.Fprintf(stdout, "Cases:       %d\n", len(results))
	fmt.Fprintf(stdout, "NBT raw:     %d bytes\n", total.RawBytes)
	for _, c := range compressions {
		fmt.Fprintf(stdout, "NBT %-7s  %d bytes (%.1f%%)\n", c.String()+":", total.Compressed[c], pct(total.Compressed[c], total.RawBytes))
	}
	fmt.Fprintf(stdout, "SNBT:        %d bytes (%.1f%%)\n", total.SNBTBytes, pct(total.SNBTBytes, total.RawBytes))
	fmt.Fprintf(stdout, "JSON:        %d bytes (%.1f%%)\n", total.JSONBytes, pct(total.JSONBytes, total.RawBytes))
	fmt.Fprintf(stdout, "CBOR:        %d bytes (%.1f%%)\n", total.CBORBytes, pct(total.CBORBytes, total.RawBytes))
	return 0
}

func loadCases(paths []string) ([]benchCase, error) {
	if len(paths) == 0 {
		return syntheticCorpus(), nil
	}
	var cases []benchCase
	for _, p := range paths {
		roots, err := stream.ReadFile(p)
		if err != nil {
			return nil, err
		}
		for i, root := range roots {
			name := filepath.Base(p)
			if len(roots) > 1 {
				name = fmt.Sprintf("%s#%d", name, i)
			}
			cases = append(cases, benchCase{name: name, root: root})
		}
	}
	return cases, nil
}

// measure encodes c every way and records the sizes.
func measure(c benchCase) (CaseResult, error) {
	r := CaseResult{
		Name:       c.name,
		RawBytes:   nbt.NamedSize(c.root),
		Compressed: make(map[stream.Compression]int, len(compressions)),
	}
	for _, comp := range compressions {
		var buf bytes.Buffer
		w, err := stream.NewWriter(&buf, comp)
		if err != nil {
			return r, err
		}
		if err := w.WriteRoot(c.root); err != nil {
			return r, err
		}
		if err := w.Close(); err != nil {
			return r, err
		}
		r.Compressed[comp] = buf.Len()
	}

	r.SNBTBytes = len(nbt.Emit(c.root.Tag))

	js, err := nbt.ToJSON(c.root.Tag)
	if err != nil {
		return r, err
	}
	r.JSONBytes = len(js)

	cb, err := nbt.ToCBOR(c.root.Tag)
	if err != nil {
		return r, err
	}
	r.CBORBytes = len(cb)
	return r, nil
}

func totals(results []CaseResult) CaseResult {
	t := CaseResult{Name: "total", Compressed: make(map[stream.Compression]int)}
	for _, r := range results {
		t.RawBytes += r.RawBytes
		t.SNBTBytes += r.SNBTBytes
		t.JSONBytes += r.JSONBytes
		t.CBORBytes += r.CBORBytes
		for c, n := range r.Compressed {
			t.Compressed[c] += n
		}
	}
	return t
}

// syntheticCorpus builds deterministic documents shaped like common game
// data: a player, a level header, and a chunk with packed arrays.
func syntheticCorpus() []benchCase {
	player := nbt.NewCompound()
	player.Set("name", nbt.String("Steve"))
	player.Set("health", nbt.Float(20))
	player.Set("xp", nbt.Int(1234))
	player.Set("pos", nbt.List(nbt.MustList(nbt.Double(12.5), nbt.Double(64), nbt.Double(-3.25))))
	inv := nbt.EmptyList()
	for i := 0; i < 36; i++ {
		item := nbt.NewCompound()
		item.Set("Slot", nbt.Byte(int8(i)))
		item.Set("id", nbt.String(fmt.Sprintf("minecraft:item_%d", i%7)))
		item.Set("Count", nbt.Byte(int8(1+i%64)))
		if err := inv.Append(nbt.CompoundTag(item)); err != nil {
			panic(err)
		}
	}
	player.Set("Inventory", nbt.List(inv))

	level := nbt.NewCompound()
	data := nbt.NewCompound()
	data.Set("LevelName", nbt.String("New World"))
	data.Set("RandomSeed", nbt.Long(-4172144997902289642))
	data.Set("SpawnX", nbt.Int(0))
	data.Set("SpawnY", nbt.Int(64))
	data.Set("SpawnZ", nbt.Int(0))
	data.Set("raining", nbt.Bool(false))
	data.Set("Time", nbt.Long(123456789))
	data.Set("DayTime", nbt.Long(6000))
	level.Set("Data", nbt.CompoundTag(data))

	chunk := nbt.NewCompound()
	chunk.Set("xPos", nbt.Int(3))
	chunk.Set("zPos", nbt.Int(-7))
	heights := make([]int64, 37)
	for i := range heights {
		heights[i] = int64(i) * 0x0101010101
	}
	chunk.Set("Heightmap", nbt.LongArray(heights))
	sections := nbt.EmptyList()
	for y := 0; y < 16; y++ {
		sec := nbt.NewCompound()
		sec.Set("Y", nbt.Byte(int8(y)))
		blocks := make([]int8, 4096)
		for i := range blocks {
			blocks[i] = int8((i*31 + y) % 5)
		}
		sec.Set("Blocks", nbt.ByteArray(blocks))
		sec.Set("BlockLight", nbt.IntArray(make([]int32, 512)))
		if err := sections.Append(nbt.CompoundTag(sec)); err != nil {
			panic(err)
		}
	}
	chunk.Set("Sections", nbt.List(sections))

	return []benchCase{
		{name: "player", root: nbt.Named("", nbt.CompoundTag(player))},
		{name: "level", root: nbt.Named("", nbt.CompoundTag(level))},
		{name: "chunk", root: nbt.Named("Level", nbt.CompoundTag(chunk))},
	}
}

func writeFile(path string, fn func(io.Writer)) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	fn(f)
	return f.Close()
}

func writeCSV(w io.Writer, results []CaseResult) {
	fmt.Fprint(w, "name,raw_bytes")
	for _, c := range compressions {
		fmt.Fprintf(w, ",%s_bytes", c)
	}
	fmt.Fprintln(w, ",snbt_bytes,json_bytes,cbor_bytes")
	for _, r := range results {
		fmt.Fprintf(w, "%s,%d", r.Name, r.RawBytes)
		for _, c := range compressions {
			fmt.Fprintf(w, ",%d", r.Compressed[c])
		}
		fmt.Fprintf(w, ",%d,%d,%d\n", r.SNBTBytes, r.JSONBytes, r.CBORBytes)
	}
}

func writeMarkdown(w io.Writer, results []CaseResult) {
	fmt.Fprintf(w, "# NBT Benchmark Results\n\n")
	fmt.Fprintf(w, "**Corpus:** %d cases  \n\n", len(results))

	total := totals(results)
	fmt.Fprintf(w, "## Summary\n\n")
	fmt.Fprintf(w, "| Encoding | Bytes | vs raw NBT |\n")
	fmt.Fprintf(w, "|----------|-------|------------|\n")
	fmt.Fprintf(w, "| NBT raw | %d | 100.0%% |\n", total.RawBytes)
	for _, c := range compressions {
		fmt.Fprintf(w, "| NBT %s | %d | %.1f%% |\n", c, total.Compressed[c], pct(total.Compressed[c], total.RawBytes))
	}
	fmt.Fprintf(w, "| SNBT | %d | %.1f%% |\n", total.SNBTBytes, pct(total.SNBTBytes, total.RawBytes))
	fmt.Fprintf(w, "| JSON | %d | %.1f%% |\n", total.JSONBytes, pct(total.JSONBytes, total.RawBytes))
	fmt.Fprintf(w, "| CBOR | %d | %.1f%% |\n\n", total.CBORBytes, pct(total.CBORBytes, total.RawBytes))

	fmt.Fprintf(w, "## Best Compression Per Case\n\n")
	fmt.Fprintf(w, "| Case | Raw | Best | Bytes | Ratio |\n")
	fmt.Fprintf(w, "|------|-----|------|-------|-------|\n")
	for _, r := range results {
		best := bestCompression(r)
		fmt.Fprintf(w, "| %s | %d | %s | %d | %.1f%% |\n",
			truncateName(r.Name, 25), r.RawBytes, best, r.Compressed[best], pct(r.Compressed[best], r.RawBytes))
	}

	fmt.Fprintf(w, "\n## Methodology\n\n")
	fmt.Fprintf(w, "- **NBT raw:** `nbt.NamedSize`, the uncompressed big-endian encoding\n")
	fmt.Fprintf(w, "- **Compressed:** `stream.Writer` at each format's default level\n")
	fmt.Fprintf(w, "- **SNBT:** compact `nbt.Emit` output\n")
	fmt.Fprintf(w, "- **JSON/CBOR:** `nbt.ToJSON` and `nbt.ToCBOR`; both lose numeric widths\n\n")

	fmt.Fprintf(w, "## Detailed Results\n\n")
	fmt.Fprint(w, "| Case | Raw")
	for _, c := range compressions {
		fmt.Fprintf(w, " | %s", c)
	}
	fmt.Fprint(w, " | SNBT | JSON | CBOR |\n|------|-----")
	for range compressions {
		fmt.Fprint(w, "|------")
	}
	fmt.Fprint(w, "|------|------|------|\n")
	for _, r := range results {
		fmt.Fprintf(w, "| %s | %d", truncateName(r.Name, 25), r.RawBytes)
		for _, c := range compressions {
			fmt.Fprintf(w, " | %d", r.Compressed[c])
		}
		fmt.Fprintf(w, " | %d | %d | %d |\n", r.SNBTBytes, r.JSONBytes, r.CBORBytes)
	}
}

func bestCompression(r CaseResult) stream.Compression {
	sorted := append([]stream.Compression(nil), compressions...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return r.Compressed[sorted[i]] < r.Compressed[sorted[j]]
	})
	return sorted[0]
}

func pct(n, of int) float64 {
	if of == 0 {
		return 0
	}
	return float64(n) / float64(of) * 100
}

func truncateName(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
