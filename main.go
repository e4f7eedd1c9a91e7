package main

import (
	"flag"
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/manningwu07/PosEnc/IO"
	"github.com/manningwu07/PosEnc/params"
	"github.com/manningwu07/PosEnc/transformer"
	"github.com/manningwu07/PosEnc/utils"
)

var (
	widthFlag   int
	maxLenFlag  int
	batchFlag   int
	seqLenFlag  int
	workersFlag int
	seedFlag    uint64

	heatmapFlag string
	csvFlag     string
	binFlag     string
	saveFlag    string
	loadFlag    string
	tokFlag     string
	textFlag    string

	asciiFlag bool
	cliFlag   bool
)

func init() {
	flag.IntVar(&widthFlag, "width", params.Config.DModel, "Embedding width (d_model)")
	flag.IntVar(&maxLenFlag, "maxlen", params.Config.MaxLen, "Positions precomputed in the table")
	flag.IntVar(&batchFlag, "batch", params.Config.BatchSize, "Demo batch size")
	flag.IntVar(&seqLenFlag, "seqlen", params.Config.SeqLen, "Demo sequence length")
	flag.IntVar(&workersFlag, "workers", -1, "Encode goroutines (0 = NumCPU, -1 = $WORKERS)")
	flag.Uint64Var(&seedFlag, "seed", 0, "Seed for the random demo batch (0 = unseeded)")

	flag.StringVar(&heatmapFlag, "heatmap", "", "Render the table as a heat map (png/svg/pdf)")
	flag.StringVar(&csvFlag, "csv", "", "Export the table as CSV")
	flag.StringVar(&binFlag, "bin", "", "Export the table in gonum binary format")
	flag.StringVar(&saveFlag, "save", "", "Save the encoder (gob)")
	flag.StringVar(&loadFlag, "load", "", "Load an encoder saved with -save instead of building one")
	flag.StringVar(&tokFlag, "tokenizer", "", "Pretrained tokenizer.json for -text and -cli")
	flag.StringVar(&textFlag, "text", "", "Encode this text instead of a random batch (needs -tokenizer)")

	flag.BoolVar(&asciiFlag, "ascii", false, "Print an ASCII preview of the table")
	flag.BoolVar(&cliFlag, "cli", false, "Interactive mode: encode each line typed")
}

func main() {
	params.FromEnv()
	flag.Parse()
	applyFlags()

	pe, err := buildEncoder()
	if err != nil {
		fail(err)
	}
	fmt.Printf("Positional encoding table: %d positions x %d dims\n", pe.MaxLen(), pe.Width())

	if tokFlag != "" {
		if err := IO.LoadBPE(tokFlag); err != nil {
			fail(err)
		}
		params.Config.VocabSize = IO.BPEVocabSize()
		params.Emb = IO.InitEmbeddings(params.Config.VocabSize, pe.Width(), seedSource())
		fmt.Printf("✅ Loaded tokenizer (%d tokens)\n", params.Config.VocabSize)
	}

	if cliFlag {
		ChatCLI(pe)
		return
	}

	var batch transformer.Batch
	if textFlag != "" {
		batch, err = textBatch(pe, []string{textFlag})
	} else {
		batch, err = randomBatch()
	}
	if err != nil {
		fail(err)
	}

	out, err := pe.EncodeParallel(batch, params.Config.Workers)
	if err != nil {
		fail(err)
	}
	fmt.Println(out.Shape())
	utils.Debugf("encoded batch: |x|=%.4f |x'|=%.4f", utils.MatrixNorm(batch.Seq(0)), utils.MatrixNorm(out.Seq(0)))

	if err := writeOutputs(pe); err != nil {
		fail(err)
	}
}

func applyFlags() {
	params.Config.DModel = widthFlag
	params.Config.MaxLen = maxLenFlag
	params.Config.BatchSize = batchFlag
	params.Config.SeqLen = seqLenFlag
	if workersFlag >= 0 {
		params.Config.Workers = workersFlag
	}
	params.Config.HeatmapPath = heatmapFlag
	params.Config.CSVPath = csvFlag
}

// buildEncoder builds a fresh encoder from the flags, or loads one with
// -load. A loaded encoder's dims win over -width / -maxlen so the demo
// batch matches it.
func buildEncoder() (*transformer.PositionalEncoding, error) {
	if loadFlag != "" {
		pe, err := transformer.LoadPositionalEncoding(loadFlag)
		if err != nil {
			return nil, err
		}
		fmt.Println("⚡ Using saved encoder", loadFlag)
		if params.Config.DModel != pe.Width() || params.Config.MaxLen != pe.MaxLen() {
			fmt.Printf("⚠️ Saved encoder is %dx%d; ignoring -width/-maxlen\n", pe.MaxLen(), pe.Width())
		}
		params.Config.DModel = pe.Width()
		params.Config.MaxLen = pe.MaxLen()
		params.Config.SeqLen = min(params.Config.SeqLen, pe.MaxLen())
		return pe, nil
	}
	return transformer.NewPositionalEncoding(params.Config.DModel, params.Config.MaxLen)
}

// seedSource is nil (global source) unless -seed is set.
func seedSource() rand.Source {
	if seedFlag == 0 {
		return nil
	}
	return rand.NewPCG(seedFlag, seedFlag)
}

// randomBatch mirrors torch.randn(batch, seqLen, width).
func randomBatch() (transformer.Batch, error) {
	c := params.Config
	n := c.BatchSize * c.SeqLen * c.DModel
	return transformer.NewBatch(c.BatchSize, c.SeqLen, c.DModel, utils.RandNormal(n, seedSource()))
}

// textBatch tokenizes each line and looks the ids up in params.Emb.
// Lines longer than the encoder's max length are truncated.
func textBatch(pe *transformer.PositionalEncoding, lines []string) (transformer.Batch, error) {
	if IO.BPEVocabSize() == 0 || params.Emb == nil {
		return transformer.Batch{}, fmt.Errorf("-text needs -tokenizer")
	}
	emb := params.Emb
	if _, w := emb.Dims(); w != pe.Width() {
		return transformer.Batch{}, fmt.Errorf("embedding width %d, encoder width %d", w, pe.Width())
	}
	seqs := make([][]int, 0, len(lines))
	longest := 0
	for _, l := range lines {
		ids, _, err := IO.EncodeBPE(l)
		if err != nil {
			return transformer.Batch{}, err
		}
		seqs = append(seqs, ids)
		longest = max(longest, len(ids))
	}
	if longest == 0 {
		return transformer.Batch{}, fmt.Errorf("text produced no tokens")
	}
	return IO.BatchFromIDs(emb, seqs, min(longest, pe.MaxLen()))
}

func writeOutputs(pe *transformer.PositionalEncoding) error {
	tab := pe.Table()
	if params.Config.Debug {
		utils.PrintMatrix(utils.RowSlice(tab, min(4, pe.MaxLen())), "pe[:4]")
	}
	if asciiFlag {
		asciiHeatmap(tab, 40, 100)
	}
	if p := params.Config.HeatmapPath; p != "" {
		if err := IO.RenderHeatmap(p, tab, "Positional Encoding Matrix"); err != nil {
			return err
		}
		fmt.Println("✅ Rendered heat map to", p)
	}
	if p := params.Config.CSVPath; p != "" {
		if err := IO.ExportTableCSV(p, tab); err != nil {
			return err
		}
		fmt.Println("✅ Exported table CSV to", p)
	}
	if binFlag != "" {
		if err := IO.ExportTableBinary(binFlag, tab); err != nil {
			return err
		}
		fmt.Println("✅ Exported table binary to", binFlag)
	}
	if saveFlag != "" {
		if err := pe.Save(saveFlag); err != nil {
			return err
		}
		fmt.Println("✅ Saved encoder to", saveFlag)
	}
	return nil
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}
