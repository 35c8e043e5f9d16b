package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/term"

	"droidlink/internal/bridge"
	"droidlink/internal/config"
	"droidlink/internal/logging"
	"droidlink/internal/notify"
	"droidlink/internal/orchestrator"
	"droidlink/internal/paths"
	"droidlink/internal/system"
	"droidlink/internal/ui"
	"droidlink/internal/version"
)

func Run(app string, args []string) int {
	logger := logging.New()

	fs := flag.NewFlagSet(app, flag.ContinueOnError)
	fs.SetOutput(os.Stdout)

	configPath := fs.String("config", "", "path to config file")
	homePath := fs.String("home", "", "droidlink home directory")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *homePath != "" {
		_ = os.Setenv(paths.EnvHome, *homePath)
	}

	resolvedConfigPath := paths.ConfigPath(*configPath)

	cfg, err := config.LoadOptional(resolvedConfigPath)
	if err != nil {
		logger.Printf("config error: %v", err)
		return 1
	}

	remaining := fs.Args()
	if len(remaining) == 0 {
		if interactive() {
			return runTUI(logger, cfg, resolvedConfigPath)
		}
		usage(app)
		return 2
	}

	cmd := remaining[0]
	switch cmd {
	case "devices":
		return runDevices(logger, cfg)
	case "connect":
		return runConnect(logger, resolvedConfigPath, cfg, remaining[1:])
	case "disconnect":
		return runDisconnect(logger, cfg, remaining[1:])
	case "install":
		return runInstall(logger, resolvedConfigPath, cfg, remaining[1:])
	case "state":
		return runState(logger, cfg, remaining[1:])
	case "ip":
		return runIP(logger, resolvedConfigPath, cfg, remaining[1:])
	case "check":
		return runSimple(logger, cfg, "check", (*orchestrator.Orchestrator).ValidateTool)
	case "restart":
		return runSimple(logger, cfg, "restart", (*orchestrator.Orchestrator).RestartService)
	case "raw":
		return runRaw(logger, cfg, remaining[1:])
	case "doctor":
		return runDoctor(logger, resolvedConfigPath, cfg)
	case "init":
		return runInit(logger, resolvedConfigPath, remaining[1:])
	case "config":
		return runConfig(logger, resolvedConfigPath, cfg, remaining[1:])
	case "tui":
		return runTUI(logger, cfg, resolvedConfigPath)
	case "version":
		fmt.Println(version.Version)
		return 0
	case "help":
		usage(app)
		return 0
	default:
		logger.Printf("unknown command: %s", cmd)
		usage(app)
		return 2
	}
}

func interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

func newOrchestrator(logger *log.Logger, cfg config.Config) (*orchestrator.Orchestrator, error) {
	runner, err := bridge.NewRunner(cfg.Bridge.GlobalArgs)
	if err != nil {
		return nil, err
	}
	path := cfg.Bridge.Path
	if path == "" {
		if located, err := bridge.Locate(); err == nil {
			path = located
		}
	}
	return orchestrator.New(orchestrator.Options{
		Runner:     runner,
		BridgePath: path,
		Interfaces: cfg.Bridge.Interfaces,
		Language:   cfg.UI.Language,
		LogLimit:   cfg.Log.Limit,
		Notifier:   notify.New(cfg.Notify.Desktop, "droidlink", int32(cfg.Notify.TimeoutMs)),
		Logger:     logger,
	}), nil
}

// await drains the orchestrator and returns the completion of operation id,
// if one was applied.
func await(o *orchestrator.Orchestrator, id uuid.UUID) (orchestrator.Completion, bool, error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	applied, err := o.Await(ctx)
	if err != nil {
		return orchestrator.Completion{}, false, err
	}
	for _, c := range applied {
		if c.ID == id {
			return c, true, nil
		}
	}
	return orchestrator.Completion{}, false, nil
}

// finish waits for operation id and maps its outcome to an exit code.
func finish(logger *log.Logger, name string, o *orchestrator.Orchestrator, id uuid.UUID) (orchestrator.Completion, int) {
	c, ok, err := await(o, id)
	if err != nil {
		logger.Printf("%s: %v", name, err)
		return c, 1
	}
	if !ok || !c.Result.OK() {
		return c, 1
	}
	return c, 0
}

func admitCode(err error) int {
	if errors.Is(err, bridge.ErrValidation) {
		return 2
	}
	return 1
}

func runDevices(logger *log.Logger, cfg config.Config) int {
	o, err := newOrchestrator(logger, cfg)
	if err != nil {
		logger.Printf("devices: %v", err)
		return 2
	}
	op, err := o.Refresh()
	if err != nil {
		return admitCode(err)
	}
	if _, code := finish(logger, "devices", o, op); code != 0 {
		return code
	}
	for _, d := range o.Registry().Devices() {
		fmt.Printf("%s\t%s\n", d.ID, d.State)
	}
	return 0
}

func runConnect(logger *log.Logger, configPath string, cfg config.Config, args []string) int {
	fs := flag.NewFlagSet("connect", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)
	port := fs.Int("port", cfg.Bridge.DefaultPort, "device tcp port")
	positional, err := parseArgs(fs, args)
	if err != nil {
		return 2
	}
	address := cfg.Device.LastAddress
	if len(positional) > 0 {
		address = positional[0]
	}

	o, err := newOrchestrator(logger, cfg)
	if err != nil {
		logger.Printf("connect: %v", err)
		return 2
	}
	op, err := o.Connect(address, *port)
	if err != nil {
		return admitCode(err)
	}
	_, code := finish(logger, "connect", o, op)
	if code == 0 {
		persist(logger, configPath, func(c *config.Config) {
			c.Device.LastAddress = address
			c.Bridge.Path = o.BridgePath()
		})
	}
	return code
}

func runDisconnect(logger *log.Logger, cfg config.Config, args []string) int {
	fs := flag.NewFlagSet("disconnect", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)
	all := fs.Bool("all", false, "disconnect every network device")
	positional, err := parseArgs(fs, args)
	if err != nil {
		return 2
	}
	if !*all && len(positional) == 0 {
		logger.Println("disconnect: device id or --all required")
		return 2
	}

	o, err := newOrchestrator(logger, cfg)
	if err != nil {
		logger.Printf("disconnect: %v", err)
		return 2
	}
	var op uuid.UUID
	if *all {
		op, err = o.DisconnectAll()
	} else {
		op, err = o.DisconnectOne(positional[0])
	}
	if err != nil {
		return admitCode(err)
	}
	_, code := finish(logger, "disconnect", o, op)
	return code
}

func runInstall(logger *log.Logger, configPath string, cfg config.Config, args []string) int {
	pkg := cfg.Device.LastPackage
	if len(args) > 0 {
		pkg = args[0]
	}
	if abs, err := filepath.Abs(pkg); err == nil && pkg != "" {
		pkg = abs
	}

	o, err := newOrchestrator(logger, cfg)
	if err != nil {
		logger.Printf("install: %v", err)
		return 2
	}
	op, err := o.Install(pkg)
	if err != nil {
		return admitCode(err)
	}
	c, code := finish(logger, "install", o, op)
	if code != 0 {
		if out := strings.TrimSpace(c.Output); out != "" {
			fmt.Println(out)
		}
		return code
	}
	persist(logger, configPath, func(c *config.Config) {
		c.Device.LastPackage = pkg
	})
	return 0
}

func runState(logger *log.Logger, cfg config.Config, args []string) int {
	o, err := newOrchestrator(logger, cfg)
	if err != nil {
		logger.Printf("state: %v", err)
		return 2
	}
	id := ""
	if len(args) > 0 {
		id = args[0]
	}
	if id == "" {
		if id, err = selectedDevice(logger, "state", o); err != nil {
			return admitCode(err)
		}
	}
	op, err := o.QueryState(id)
	if err != nil {
		return admitCode(err)
	}
	_, code := finish(logger, "state", o, op)
	if code == 0 {
		fmt.Print(o.Output())
	}
	return code
}

func runIP(logger *log.Logger, configPath string, cfg config.Config, args []string) int {
	fs := flag.NewFlagSet("ip", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)
	serial := fs.String("serial", "", "device serial (default: first attached device)")
	if _, err := parseArgs(fs, args); err != nil {
		return 2
	}

	o, err := newOrchestrator(logger, cfg)
	if err != nil {
		logger.Printf("ip: %v", err)
		return 2
	}
	id := *serial
	if id == "" {
		if id, err = selectedDevice(logger, "ip", o); err != nil {
			return admitCode(err)
		}
	}
	op, err := o.ResolveIP(id)
	if err != nil {
		return admitCode(err)
	}
	_, code := finish(logger, "ip", o, op)
	if code != 0 {
		return code
	}
	fmt.Println(o.Address())
	address := o.Address()
	persist(logger, configPath, func(c *config.Config) {
		c.Device.LastAddress = address
	})
	return 0
}

// selectedDevice refreshes the registry and returns the default selection.
func selectedDevice(logger *log.Logger, name string, o *orchestrator.Orchestrator) (string, error) {
	op, err := o.Refresh()
	if err != nil {
		return "", err
	}
	if _, code := finish(logger, name, o, op); code != 0 {
		return "", errors.New("device listing failed")
	}
	d, ok := o.Registry().Selected()
	if !ok {
		logger.Printf("%s: no device attached", name)
		return "", fmt.Errorf("%w: no device attached", bridge.ErrValidation)
	}
	return d.ID, nil
}

func runSimple(logger *log.Logger, cfg config.Config, name string, start func(*orchestrator.Orchestrator) (uuid.UUID, error)) int {
	o, err := newOrchestrator(logger, cfg)
	if err != nil {
		logger.Printf("%s: %v", name, err)
		return 2
	}
	op, err := start(o)
	if err != nil {
		return admitCode(err)
	}
	_, code := finish(logger, name, o, op)
	return code
}

func runRaw(logger *log.Logger, cfg config.Config, args []string) int {
	if len(args) == 1 {
		split, err := bridge.SplitArgs(args[0])
		if err != nil {
			logger.Printf("raw: %v", err)
			return 2
		}
		args = split
	}
	o, err := newOrchestrator(logger, cfg)
	if err != nil {
		logger.Printf("raw: %v", err)
		return 2
	}
	op, err := o.Raw(args)
	if err != nil {
		return admitCode(err)
	}
	c, code := finish(logger, "raw", o, op)
	fmt.Print(c.Output)
	return code
}

func runDoctor(logger *log.Logger, configPath string, cfg config.Config) int {
	runner, err := bridge.NewRunner(cfg.Bridge.GlobalArgs)
	if err != nil {
		logger.Printf("doctor: %v", err)
		return 2
	}
	results := system.RunDoctor(cfg, configPath, runner)
	fmt.Print(system.FormatDoctor(results))
	if system.Failed(results) {
		return 1
	}
	return 0
}

func runInit(logger *log.Logger, configPath string, args []string) int {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)

	force := fs.Bool("force", false, "overwrite existing config")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	homeDir, err := paths.HomeDir()
	if err != nil {
		logger.Printf("init: %v", err)
		return 1
	}
	if err := paths.EnsureDir(homeDir); err != nil {
		logger.Printf("init: %v", err)
		return 1
	}

	if _, err := os.Stat(configPath); err == nil && !*force {
		logger.Printf("init: config already exists (%s). Use --force to overwrite", configPath)
		return 1
	}

	cfg := config.DefaultConfig()
	if located, err := bridge.Locate(); err == nil {
		cfg.Bridge.Path = located
		logger.Printf("init: found bridge at %s", located)
	} else {
		logger.Printf("init: %v", err)
	}
	if err := config.Save(configPath, cfg); err != nil {
		logger.Printf("init: %v", err)
		return 1
	}

	logger.Printf("init: created %s", configPath)
	return 0
}

func runConfig(logger *log.Logger, configPath string, cfg config.Config, args []string) int {
	if len(args) == 0 {
		data, err := config.Marshal(cfg)
		if err != nil {
			logger.Printf("config: %v", err)
			return 1
		}
		fmt.Printf("# %s\n%s", configPath, data)
		return 0
	}
	switch args[0] {
	case "path":
		fmt.Println(configPath)
		return 0
	case "keys":
		for _, k := range config.Keys() {
			fmt.Println(k)
		}
		return 0
	case "set":
		if len(args) != 3 {
			logger.Println("config: usage: config set <key> <value>")
			return 2
		}
		if err := config.Set(&cfg, args[1], args[2]); err != nil {
			logger.Printf("config: %v", err)
			return 2
		}
		if err := config.Save(configPath, cfg); err != nil {
			logger.Printf("config: %v", err)
			return 1
		}
		logger.Printf("config: %s updated", args[1])
		return 0
	default:
		logger.Printf("config: unknown subcommand %s", args[0])
		return 2
	}
}

func runTUI(logger *log.Logger, cfg config.Config, configPath string) int {
	if err := ui.Run(cfg, configPath); err != nil {
		logger.Printf("tui error: %v", err)
		return 1
	}
	return 0
}

// persist applies edit to the config on disk. Failures are logged only.
func persist(logger *log.Logger, configPath string, edit func(*config.Config)) {
	cfg, err := config.LoadOptional(configPath)
	if err != nil {
		logger.Printf("config: %v", err)
		return
	}
	edit(&cfg)
	if err := config.Save(configPath, cfg); err != nil {
		logger.Printf("config: %v", err)
	}
}

// parseArgs parses flags that may follow positional arguments.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

func usage(app string) {
	fmt.Printf("%s <command> [options]\n", app)
	fmt.Println("Global flags:")
	fmt.Println("  --config <path>    path to config file (default: <home>/droidlink.yaml)")
	fmt.Println("  --home <path>      droidlink home directory (default: ~/.droidlink)")
	fmt.Println("Commands:")
	fmt.Println("  devices")
	fmt.Println("  connect [<ip>[:port]] [--port N]")
	fmt.Println("  disconnect <id> | --all")
	fmt.Println("  install [<file.apk>]")
	fmt.Println("  state [<id>]")
	fmt.Println("  ip [--serial <id>]")
	fmt.Println("  check")
	fmt.Println("  restart")
	fmt.Println("  raw <args...>")
	fmt.Println("  doctor")
	fmt.Println("  init [--force]")
	fmt.Println("  config [path|keys|set <key> <value>]")
	fmt.Println("  tui")
	fmt.Println("  version")
	fmt.Println("  help")
	fmt.Println("Without a command on a terminal, the TUI starts.")
}
