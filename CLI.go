package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/manningwu07/PosEnc/IO"
	"github.com/manningwu07/PosEnc/transformer"
	"github.com/manningwu07/PosEnc/utils"
)

func ChatCLI(pe *transformer.PositionalEncoding) {
	runCLI(pe, os.Stdin, os.Stdout)
}

// runCLI encodes every line read from in and reports the per-position
// norm before and after the table is added. "exit" or EOF quits.
func runCLI(pe *transformer.PositionalEncoding, in io.Reader, out io.Writer) {
	if IO.BPEVocabSize() == 0 {
		fmt.Fprintln(out, "No tokenizer loaded; pass -tokenizer path/to/tokenizer.json")
		return
	}
	reader := bufio.NewReader(in)
	fmt.Fprintln(out, "Type a sentence to encode. Type 'exit' to quit.")
	for {
		fmt.Fprint(out, "You: ")
		input, err := reader.ReadString('\n')
		input = strings.TrimSpace(input)
		if input == "exit" {
			return
		}
		if input != "" {
			if err := describeLine(pe, input, out); err != nil {
				fmt.Fprintln(out, "Error:", err)
			}
		}
		if err != nil {
			return
		}
	}
}

func describeLine(pe *transformer.PositionalEncoding, line string, out io.Writer) error {
	_, toks, err := IO.EncodeBPE(line)
	if err != nil {
		return err
	}
	batch, err := textBatch(pe, []string{line})
	if err != nil {
		return err
	}
	enc, err := pe.Encode(batch)
	if err != nil {
		return err
	}
	x, y := batch.Seq(0), enc.Seq(0)
	for p := 0; p < batch.SeqLen; p++ {
		tok := "<pad>"
		if p < len(toks) {
			tok = toks[p]
		}
		fmt.Fprintf(out, "%4d %-16q |x|=%.4f |x'|=%.4f\n", p, tok,
			utils.MatrixNorm(x.RowView(p)), utils.MatrixNorm(y.RowView(p)))
	}
	fmt.Fprintln(out, "Num of tokens:", len(toks))
	return nil
}
