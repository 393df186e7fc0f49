// cmd/luavm/main.go
package main

import (
	"fmt"
	"os"

	"luavm/internal/errors"
	"luavm/internal/loader"
	"luavm/internal/value"
	"luavm/internal/vm"
)

// exitCode picks the process exit status for a failed run: a Fatal
// VMError marks an internal invariant violation rather than an
// ordinary recoverable script error, so it gets its own status.
func exitCode(err error) int {
	if verr, ok := err.(*errors.VMError); ok && verr.Fatal() {
		return 2
	}
	return 1
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		os.Exit(0)
	}

	if args[0] == "-l" || args[0] == "--list" {
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: luavm -l <chunk>")
			os.Exit(1)
		}
		runList(args[1])
		return
	}

	runExecute(args[0])
}

func runList(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	proto, err := loader.Load(data)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Print(proto.Disassemble())
}

func runExecute(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	s := vm.NewState()
	if err := s.Load(data, path); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	s.Trace(func(pc int, stackValues []string) {
		fmt.Printf("%d\t%v\n", pc, stackValues)
	})

	if err := s.Call(0, -1); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}

	top := s.GetTop()
	for i := 1; i <= top; i++ {
		fmt.Println(value.TypeName(s.TypeID(i)), s.Repr(i))
	}
	os.Exit(0)
}
