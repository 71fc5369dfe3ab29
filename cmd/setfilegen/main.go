package main

import (
	"context"
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/dustin/go-humanize"
	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/spf13/pflag"
	"github.com/xaionaro-go/mcscaler/setfile"
)

func main() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "syntax: %s <source.toml> <output.bin>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "        %s --print <output.bin>\n", os.Args[0])
		pflag.PrintDefaults()
	}

	loggerLevel := logger.LevelWarning
	pflag.Var(&loggerLevel, "log-level", "Log level")
	printOnly := pflag.Bool("print", false, "parse a compiled setfile and print it")
	pflag.Parse()

	l := logrus.Default().WithLevel(loggerLevel)
	ctx := logger.CtxWithLogger(context.Background(), l)
	logger.Default = func() logger.Logger {
		return l
	}
	defer belt.Flush(ctx)

	if *printOnly {
		if len(pflag.Args()) != 1 {
			pflag.Usage()
			os.Exit(1)
		}
		data, err := os.ReadFile(pflag.Arg(0))
		if err != nil {
			l.Fatal(err)
		}
		t, err := setfile.Parse(data)
		if err != nil {
			l.Fatal(err)
		}
		fmt.Print(spew.Sdump(t))
		return
	}

	if len(pflag.Args()) != 2 {
		pflag.Usage()
		os.Exit(1)
	}
	sourcePath, outputPath := pflag.Arg(0), pflag.Arg(1)

	src, err := setfile.DecodeSourceFile(sourcePath)
	if err != nil {
		l.Fatal(err)
	}
	t, err := src.Compile()
	if err != nil {
		l.Fatalf("unable to compile '%s': %v", sourcePath, err)
	}
	data := t.Bytes()
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		l.Fatal(err)
	}
	l.Infof("wrote %d entries (%s) to '%s'", len(t.Entries), humanize.IBytes(uint64(len(data))), outputPath)
}
