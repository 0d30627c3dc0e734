package main

import (
	"os"
	"runtime/debug"

	"github.com/kostaleonard/leocoin/cmd"
	"github.com/kostaleonard/leocoin/logx"
	"github.com/kostaleonard/leocoin/monitoring"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			monitoring.IncreasePanicCount()
			_ = logx.Errorf("LEOCOIN CRASHED: %v\n%s", r, debug.Stack())
			os.Exit(1)
		}
	}()

	cmd.Execute()
}
