package integration

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"flexvg/internal/app"
	"flexvg/internal/graphio"
	"flexvg/pkg/api"
)

const reference = ">chr1 test\nACGTACGTAC\nGTACGTACGT\n>chr2\nTTTTGGGGCCCC\n"

const variants = `##fileformat=VCFv4.2
#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO
chr1	5	rs1	A	G	50	PASS	.
chr1	12	rs2	T	C,G	50	PASS	.
chr2	9	rs3	C	A	50	PASS	.
`

func write(t *testing.T, dir, name, data string) string {
	t.Helper()
	fn := filepath.Join(dir, name)
	if err := os.WriteFile(fn, []byte(data), 0644); err != nil {
		t.Fatalf("write %s: %v", fn, err)
	}
	return fn
}

func writeGzip(t *testing.T, dir, name, data string) string {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(data)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return write(t, dir, name, buf.String())
}

func runOK(t *testing.T, argv ...string) string {
	t.Helper()
	var out, errBuf bytes.Buffer
	if code := app.Run(argv, &out, &errBuf); code != 0 {
		t.Fatalf("%v: exit %d, err=%s", argv, code, errBuf.String())
	}
	return out.String()
}

func decode(t *testing.T, js string) api.GraphV1 {
	t.Helper()
	var g api.GraphV1
	if err := json.Unmarshal([]byte(js), &g); err != nil {
		t.Fatalf("decode json: %v\n%s", err, js)
	}
	return g
}

func segments(g api.GraphV1) []string {
	var out []string
	for _, n := range g.Nodes {
		out = append(out, n.Segment)
	}
	return out
}

func TestConstructEndToEnd(t *testing.T) {
	dir := t.TempDir()
	fa := writeGzip(t, dir, "ref.fa.gz", reference)
	vc := write(t, dir, "calls.vcf", variants)

	g := decode(t, runOK(t, "construct", "--format", "json", fa, vc))
	want := []string{"ACGTA", "CGTACGT", "ACGTACGT", "TTTTGGGGC", "CCC"}
	if got := segments(g); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("segments = %v, want %v", got, want)
	}
	if g.Nodes[0].Variants[0].ID != "rs1" || len(g.Nodes[1].Variants[0].Alt) != 2 {
		t.Fatalf("variant payload not attached: %+v", g.Nodes[:2])
	}
	if len(g.Nodes[0].Right) != 1 || g.Nodes[0].Right[0] != g.Nodes[1].ID {
		t.Fatalf("first node not linked to second: %+v", g.Nodes[0])
	}
	if len(g.Nodes[3].Left) != 0 {
		t.Fatalf("sequences must not be linked to each other: %+v", g.Nodes[3])
	}
}

func TestConstructIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	fa := write(t, dir, "ref.fa", reference)
	vc := write(t, dir, "calls.vcf", variants)

	a := runOK(t, "construct", fa, vc)
	b := runOK(t, "construct", fa, vc)
	if a != b || !strings.HasPrefix(a, graphio.Magic) {
		t.Fatalf("msgpack output differs between runs or lacks the magic header")
	}
}

func TestUpdateRewritesInPlace(t *testing.T) {
	dir := t.TempDir()
	fa := write(t, dir, "ref.fa", reference)
	vc := write(t, dir, "calls.vcf", variants)
	out := filepath.Join(dir, "graph.fvg")
	runOK(t, "construct", "-o", out, fa, vc)

	more := write(t, dir, "more.vcf", "chr2\t3\trs4\tT\tA\n")
	runOK(t, "update", out, more)

	js := runOK(t, "update", "-o", "-", "--format", "json", out, write(t, dir, "none.vcf", ""))
	g := decode(t, js)
	got := strings.Join(segments(g), ",")
	for _, s := range []string{"TTT", "TGGGGC"} {
		if !strings.Contains(got, s) {
			t.Fatalf("segments %s lack split piece %s", got, s)
		}
	}
	if strings.Contains(got, "TTTTGGGG") {
		t.Fatalf("old node survived the update: %s", got)
	}
}

func TestBadgerDirectory(t *testing.T) {
	dir := t.TempDir()
	fa := write(t, dir, "ref.fa", reference)
	vc := write(t, dir, "calls.vcf", variants)
	db := filepath.Join(dir, "graph.db")

	runOK(t, "construct", "--format", "badger", "-o", db, fa, vc)
	g := decode(t, runOK(t, "update", "-o", "-", "--format", "json", db, write(t, dir, "none.vcf", "")))
	if len(g.Nodes) != 5 {
		t.Fatalf("badger graph has %d nodes, want 5", len(g.Nodes))
	}
}

func TestDOTOutput(t *testing.T) {
	dir := t.TempDir()
	fa := write(t, dir, "ref.fa", reference)
	vc := write(t, dir, "calls.vcf", variants)

	dot := runOK(t, "construct", "--format", "dot", fa, vc)
	if !strings.HasPrefix(dot, "digraph {") || strings.Count(dot, " -> ") != 3 {
		t.Fatalf("unexpected dot output:\n%s", dot)
	}
}

func TestBothInputsOnStdinRejected(t *testing.T) {
	var out, errBuf bytes.Buffer
	code := app.Run([]string{"construct", "-", "-"}, &out, &errBuf)
	if code != 3 || out.Len() != 0 {
		t.Fatalf("both inputs on stdin: exit %d out %q", code, out.String())
	}
}

func TestCanceledRunExits130(t *testing.T) {
	dir := t.TempDir()
	fa := write(t, dir, "big.fa", ">chr1\n"+strings.Repeat("ACGTACGTAC\n", 1<<16))
	vc := write(t, dir, "calls.vcf", variants)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	code := app.RunContext(ctx, []string{"construct", fa, vc}, &out, io.Discard)
	if code != 130 {
		t.Fatalf("expected exit 130 on cancel, got %d", code)
	}
	if out.Len() != 0 {
		t.Fatalf("canceled run wrote output")
	}
}
