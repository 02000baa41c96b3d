// Command masm assembles source files for the 15-bit educational
// machine. Each argument is a file stem: <stem>.as is read and, on
// success, <stem>.am, <stem>.ob and conditionally <stem>.ent and
// <stem>.ext are written beside it.
package main

import (
	goflag "flag"
	"fmt"
	"os"
	"strings"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"masm/assembler"
)

var rootCmd = &cobra.Command{
	Use:   "masm stem...",
	Short: "Two-pass assembler for the 15-bit educational machine",
	Long: `masm reads <stem>.as for every stem given on the command line and
assembles each file independently. A successful run writes the
macro-expanded source to <stem>.am and the object file to <stem>.ob;
<stem>.ent and <stem>.ext are written only when the program declares
entry symbols or references externals. A file with errors produces
diagnostics on stderr and no artifacts, and does not stop the
remaining files from assembling.`,
	SilenceUsage: true,
	RunE:         run,
}

func run(cmd *cobra.Command, stems []string) error {
	openFailed := 0
	for _, stem := range stems {
		if err := assembleStem(stem); err != nil {
			fmt.Fprintf(os.Stderr, "masm: %v\n", err)
			openFailed++
		}
	}
	if len(stems) > 0 && openFailed == len(stems) {
		return fmt.Errorf("all %d input files were unreadable", len(stems))
	}
	return nil
}

// assembleStem runs the pipeline for one stem. The returned error marks
// the stem unreadable; per-line defects are reported by the core and
// simply suppress this stem's artifacts.
func assembleStem(stem string) error {
	srcName := stem + ".as"
	f, err := os.Open(srcName)
	if err != nil {
		return err
	}
	defer f.Close()

	asm := assembler.New(srcName, os.Stderr)
	out, err := asm.Assemble(f)
	if err != nil {
		return err
	}
	if !out.OK() {
		glog.V(1).Infof("%s: %d errors, no output written", srcName, out.Errors)
		return nil
	}
	glog.V(1).Infof("%s: assembled cleanly", srcName)

	if err := writeArtifact(stem+".am", strings.Join(out.Expanded, "\n")+"\n"); err != nil {
		return nil
	}
	if err := writeArtifact(stem+".ob", out.Object); err != nil {
		return nil
	}
	if out.Entries != "" {
		if err := writeArtifact(stem+".ent", out.Entries); err != nil {
			return nil
		}
	}
	if out.Externals != "" {
		if err := writeArtifact(stem+".ext", out.Externals); err != nil {
			return nil
		}
	}
	return nil
}

// writeArtifact creates one output file; a create failure abandons the
// current stem after reporting.
func writeArtifact(name, content string) error {
	if err := os.WriteFile(name, []byte(content), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "masm: %v\n", err)
		return err
	}
	return nil
}

func main() {
	rootCmd.PersistentFlags().AddGoFlagSet(goflag.CommandLine)
	defer glog.Flush()
	if err := rootCmd.Execute(); err != nil {
		glog.Flush()
		os.Exit(1)
	}
}
