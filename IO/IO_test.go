package IO

import (
	"encoding/csv"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/manningwu07/PosEnc/transformer"
)

func smallTable(t *testing.T) *mat.Dense {
	t.Helper()
	pe, err := transformer.NewPositionalEncoding(6, 5)
	if err != nil {
		t.Fatal(err)
	}
	return pe.Table()
}

func TestExportTableCSV(t *testing.T) {
	tab := smallTable(t)
	path := filepath.Join(t.TempDir(), "out", "pe.csv")
	if err := ExportTableCSV(path, tab); err != nil {
		t.Fatalf("ExportTableCSV: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	recs, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 6 || len(recs[0]) != 7 {
		t.Fatalf("got %d rows x %d cols", len(recs), len(recs[0]))
	}
	if recs[0][0] != "position" || recs[0][6] != "d5" {
		t.Fatalf("header %v", recs[0])
	}
	for i := 1; i < len(recs); i++ {
		for j := 1; j < len(recs[i]); j++ {
			v, err := strconv.ParseFloat(recs[i][j], 64)
			if err != nil {
				t.Fatal(err)
			}
			if v != tab.At(i-1, j-1) {
				t.Fatalf("cell (%d,%d)=%g want %g", i-1, j-1, v, tab.At(i-1, j-1))
			}
		}
	}
}

func TestExportImportTableBinary(t *testing.T) {
	tab := smallTable(t)
	path := filepath.Join(t.TempDir(), "pe.bin")
	if err := ExportTableBinary(path, tab); err != nil {
		t.Fatalf("ExportTableBinary: %v", err)
	}
	got, err := ImportTableBinary(path)
	if err != nil {
		t.Fatalf("ImportTableBinary: %v", err)
	}
	if !mat.Equal(got, tab) {
		t.Fatal("binary round trip changed the table")
	}
	if _, err := ImportTableBinary(filepath.Join(t.TempDir(), "missing.bin")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestRenderHeatmap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pe.png")
	if err := RenderHeatmap(path, smallTable(t), "Positional Encoding Matrix"); err != nil {
		t.Fatalf("RenderHeatmap: %v", err)
	}
	st, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if st.Size() == 0 {
		t.Fatal("empty image")
	}
}

func TestBatchFromIDs(t *testing.T) {
	emb := InitEmbeddings(10, 4, rand.NewPCG(3, 4))
	batch, err := BatchFromIDs(emb, [][]int{{1, 2, 3}, {4}}, 0)
	if err != nil {
		t.Fatalf("BatchFromIDs: %v", err)
	}
	if s := batch.Shape(); s[0] != 2 || s[1] != 3 || s[2] != 4 {
		t.Fatalf("shape %v", s)
	}
	for d := 0; d < 4; d++ {
		if batch.At(0, 2, d) != emb.At(3, d) {
			t.Fatalf("seq 0 pos 2 dim %d not row 3", d)
		}
		if batch.At(1, 1, d) != emb.At(PadID, d) {
			t.Fatalf("seq 1 pos 1 dim %d not padded", d)
		}
	}

	trunc, err := BatchFromIDs(emb, [][]int{{5, 6, 7, 8}}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if trunc.SeqLen != 2 || trunc.At(0, 1, 0) != emb.At(6, 0) {
		t.Fatal("truncation wrong")
	}

	if _, err := BatchFromIDs(emb, [][]int{{11}}, 0); err == nil {
		t.Fatal("expected out-of-range error")
	}
	if _, err := BatchFromIDs(emb, nil, 0); err == nil {
		t.Fatal("expected error for no sequences")
	}
}

func TestBPEWithoutTokenizer(t *testing.T) {
	bpeTokenizer = nil
	if _, _, err := EncodeBPE("hello"); err == nil {
		t.Fatal("expected error before LoadBPE")
	}
	if BPEVocabSize() != 0 {
		t.Fatal("vocab size should be 0 without a tokenizer")
	}
	if err := LoadBPE(filepath.Join(t.TempDir(), "tokenizer.json")); err == nil {
		t.Fatal("expected error for missing tokenizer file")
	}
}

func TestBPEEncodeToBatch(t *testing.T) {
	defer UnloadBPE()
	if err := LoadBPE(filepath.Join("testdata", "tokenizer.json")); err != nil {
		t.Fatalf("LoadBPE: %v", err)
	}
	if n := BPEVocabSize(); n != 6 {
		t.Fatalf("vocab size %d, want 6", n)
	}

	ids, toks, err := EncodeBPE("hello world positional")
	if err != nil {
		t.Fatalf("EncodeBPE: %v", err)
	}
	wantIDs := []int{2, 3, 4, 5}
	wantToks := []string{"hello", "world", "pos", "##itional"}
	if len(ids) != len(wantIDs) || len(toks) != len(wantToks) {
		t.Fatalf("ids %v tokens %v", ids, toks)
	}
	for i := range wantIDs {
		if ids[i] != wantIDs[i] || toks[i] != wantToks[i] {
			t.Fatalf("ids %v tokens %v", ids, toks)
		}
	}

	pe, err := transformer.NewPositionalEncoding(8, 16)
	if err != nil {
		t.Fatal(err)
	}
	emb := InitEmbeddings(BPEVocabSize(), pe.Width(), rand.NewPCG(1, 1))
	batch, err := BatchFromIDs(emb, [][]int{ids, ids[:2]}, 0)
	if err != nil {
		t.Fatalf("BatchFromIDs: %v", err)
	}
	out, err := pe.Encode(batch)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if s := out.Shape(); s[0] != 2 || s[1] != 4 || s[2] != 8 {
		t.Fatalf("shape %v", s)
	}
	tab := pe.Table()
	scale := math.Sqrt(8)
	for d := 0; d < 8; d++ {
		want := emb.At(3, d)*scale + tab.At(1, d)
		if math.Abs(out.At(0, 1, d)-want) > 1e-12 {
			t.Fatalf("token 'world' dim %d: got %g want %g", d, out.At(0, 1, d), want)
		}
		pad := emb.At(PadID, d)*scale + tab.At(3, d)
		if math.Abs(out.At(1, 3, d)-pad) > 1e-12 {
			t.Fatalf("pad dim %d: got %g want %g", d, out.At(1, 3, d), pad)
		}
	}
}
