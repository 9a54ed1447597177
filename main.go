package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rv32im/rvsim/api"
	"github.com/rv32im/rvsim/config"
	"github.com/rv32im/rvsim/debugger"
	"github.com/rv32im/rvsim/loader"
	"github.com/rv32im/rvsim/tools"
	"github.com/rv32im/rvsim/vm"
)

// Version information - can be overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help information")
		debugMode   = flag.Bool("debug", false, "Start in debugger mode")
		tuiMode     = flag.Bool("tui", false, "Use TUI (Text User Interface) debugger")
		apiServer   = flag.Bool("api-server", false, "Start HTTP API server mode")
		apiPort     = flag.Int("port", 8088, "API server port (used with -api-server)")
		maxCycles   = flag.Uint64("max-cycles", vm.DefaultMaxSteps, "Maximum CPU cycles before halt (0 disables the limit)")
		configPath  = flag.String("config", "", "Path to config file (default: platform config directory)")
		verboseMode = flag.Bool("verbose", false, "Verbose output")
		lintMode    = flag.Bool("lint", false, "Validate a hex image's format without running it")
		lintStrict  = flag.Bool("lint-strict", false, "Used with -lint: treat warnings as errors")
		statsPath   = flag.String("stats", "", "Write per-mnemonic execution statistics as JSON to this path")
	)

	flag.Parse()

	if *showVersion {
		fmt.Printf("rvsim %s\n", Version)
		if Commit != "unknown" {
			fmt.Printf("Commit: %s\n", Commit)
		}
		if Date != "unknown" {
			fmt.Printf("Built: %s\n", Date)
		}
		os.Exit(0)
	}

	if *showHelp {
		printHelp()
		os.Exit(0)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if *apiServer {
		runAPIServer(cfg, *apiPort)
		return
	}

	if *lintMode {
		if flag.NArg() < 1 {
			printHelp()
			os.Exit(0)
		}
		runLint(flag.Arg(0), *lintStrict)
		return
	}

	if flag.NArg() < 2 {
		printHelp()
		os.Exit(0)
	}

	inputPath := flag.Arg(0)
	tracePath := flag.Arg(1)

	machine := vm.NewVM()
	machine.MaxSteps = *maxCycles

	entryAddr, err := loader.Load(inputPath, machine.Mem)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading image: %v\n", err)
		os.Exit(1)
	}
	if override, ok, err := cfg.EntryPointOverride(); err != nil {
		fmt.Fprintf(os.Stderr, "Error in config: %v\n", err)
		os.Exit(1)
	} else if ok {
		entryAddr = override
	}
	machine.SetPC(entryAddr)
	machine.EntryPC = entryAddr

	if *verboseMode {
		fmt.Printf("Loaded %s, entry point 0x%08x\n", inputPath, entryAddr)
	}

	if *debugMode || *tuiMode {
		dbg := debugger.New(machine)

		if *tuiMode {
			if err := debugger.RunTUI(dbg); err != nil {
				fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
				os.Exit(1)
			}
		} else {
			fmt.Println("rvsim debugger - type 'help' for commands")
			if err := debugger.RunCLI(dbg); err != nil {
				fmt.Fprintf(os.Stderr, "Debugger error: %v\n", err)
				os.Exit(1)
			}
		}
		return
	}

	traceFile, err := os.Create(tracePath) // #nosec G304 -- user-specified trace output path
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating trace file: %v\n", err)
		os.Exit(1)
	}
	defer traceFile.Close()

	var stats *vm.PerformanceStatistics
	if *statsPath != "" {
		stats = vm.NewPerformanceStatistics()
	}

	runErr := machine.Run(func(rec vm.TraceRecord) {
		fmt.Fprintln(traceFile, rec.Text)
		stats.Record(rec)
	})

	if stats != nil {
		if err := writeStats(*statsPath, stats); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing statistics: %v\n", err)
		}
	}

	if *verboseMode {
		fmt.Printf("Execution complete: %s\n", machine.DumpState())
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Runtime error at pc=0x%08x: %v\n", machine.PC, runErr)
		os.Exit(1)
	}

	os.Exit(0)
}

func writeStats(path string, stats *vm.PerformanceStatistics) error {
	f, err := os.Create(path) // #nosec G304 -- user-specified statistics output path
	if err != nil {
		return fmt.Errorf("create statistics file: %w", err)
	}
	defer f.Close()
	return stats.WriteJSON(f)
}

func runLint(path string, strict bool) {
	f, err := os.Open(path) // #nosec G304 -- user-specified image path
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening image: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	opts := tools.DefaultLintOptions()
	opts.Strict = strict
	linter := tools.NewLinter(opts)
	issues := linter.Lint(f, path)

	for _, issue := range issues {
		fmt.Println(issue.String())
	}
	if len(issues) == 0 {
		fmt.Println("no issues found")
	}
	if linter.HasErrors() {
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFrom(path)
}

func runAPIServer(cfg *config.Config, port int) {
	server := api.NewServer(port, cfg, Version)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "API server error: %v\n", err)
			os.Exit(1)
		}
	}()

	<-sigChan
	fmt.Println("\nShutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("API server stopped")
}

func printHelp() {
	fmt.Printf(`rvsim %s - a RISC-V (RV32IM) instruction-set simulator

Usage: rvsim [options] <input.hex> <output.trace>
       rvsim -debug <input.hex> <output.trace>
       rvsim -tui <input.hex> <output.trace>
       rvsim -api-server [-port N]
       rvsim -lint <input.hex>

Options:
  -help          Show this help message
  -version       Show version information
  -api-server    Start HTTP API server mode (no image required)
  -port N        API server port (default: 8088, used with -api-server)
  -debug         Start in debugger mode (line-oriented CLI)
  -tui           Start in TUI debugger mode
  -lint          Validate a hex image's format without running it
  -lint-strict   Used with -lint: treat warnings as errors
  -stats FILE    Write per-mnemonic execution statistics as JSON to FILE
  -max-cycles N  Maximum cycles before forced halt (default: %d, 0 disables)
  -config FILE   Path to config file (default: platform config directory)
  -verbose       Enable verbose output

Examples:
  rvsim program.hex program.trace
  rvsim -debug program.hex program.trace
  rvsim -tui program.hex program.trace
  rvsim -api-server -port 9000
  rvsim -lint program.hex
  rvsim -stats stats.json program.hex program.trace

Debugger commands (when in -debug mode):
  step, s            Execute a single instruction
  continue, c         Run until a breakpoint or halt
  break ADDR          Set a breakpoint at a hex address
  watch REG           Break when register REG changes
  regs                Print the register file
  mem ADDR LEN        Dump LEN bytes of memory starting at ADDR
  trace on|off        Toggle printing each trace line as it executes
  help                Show debugger help
`, Version, vm.DefaultMaxSteps)
}
