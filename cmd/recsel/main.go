package main

import (
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/skeema/mybase"

	"github.com/go-recutils/recsel/query"
	"github.com/go-recutils/recsel/recfile"
)

const version = "0.1"
const rootDesc = `recsel selects and projects records out of recfile-formatted text
databases, using type filters, index lookups, quick substring search, and the
SEX selection-expression language.`

func main() {
	defer panicHandler()

	cmd := mybase.NewCommand("recsel", version, rootDesc, Handler)
	query.AddCommandOptions(cmd)
	cmd.AddOption(mybase.BoolOption("debug", 0, false, "Enable debug logging"))
	cmd.AddArg("file", "", false)

	cfg, err := mybase.ParseCLI(cmd, os.Args)
	if err != nil {
		Exit(NewExitValue(CodeBadUsage, err.Error()))
	}
	if cfg.GetBool("debug") {
		log.SetLevel(log.DebugLevel)
	}

	Exit(cfg.HandleCommand())
}

// Handler is the handler method for the recsel command.
func Handler(cfg *mybase.Config) error {
	var r io.Reader = os.Stdin
	if len(cfg.CLI.ArgValues) > 0 && cfg.CLI.ArgValues[0] != "" {
		f, err := os.Open(cfg.CLI.ArgValues[0])
		if err != nil {
			return WrapExitCode(CodeNoInput, err)
		}
		defer f.Close()
		r = f
	}

	rs, err := recfile.ParseStream(r)
	if err != nil {
		return WrapExitCode(CodeBadInput, err)
	}

	spec, err := query.SpecFromConfig(cfg)
	if err != nil {
		return WrapExitCode(CodeBadUsage, err)
	}

	result, err := query.Run(rs, spec)
	if err != nil {
		return WrapExitCode(CodeBadUsage, err)
	}

	out, err := query.Project(result, spec)
	if err != nil {
		return WrapExitCode(CodeBadUsage, err)
	}
	fmt.Print(out)
	return nil
}
