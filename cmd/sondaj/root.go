package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/KilimcininKorOglu/sondaj/internal/config"
	"github.com/KilimcininKorOglu/sondaj/internal/endpoint"
	"github.com/KilimcininKorOglu/sondaj/internal/ifaces"
	"github.com/KilimcininKorOglu/sondaj/internal/portset"
	"github.com/KilimcininKorOglu/sondaj/internal/scan"
	"github.com/KilimcininKorOglu/sondaj/internal/scanout"
	"github.com/KilimcininKorOglu/sondaj/internal/tui"
)

var (
	ifaceName       string
	tcpPorts        string
	udpPorts        string
	waitMs          int
	retransmissions int
	ratelimitMs     int
	noColor         bool
	tuiMode         bool

	cfgFile string
	cfg     *config.Config
)

// scanSourcePort is the fixed source port every probe of a run is sent
// from; responses are correlated against it.
const scanSourcePort = 57489

var rootCmd = &cobra.Command{
	Use:   "sondaj [flags] <target>",
	Short: "Layer-4 TCP/UDP port scanner",
	Long: `sondaj sends hand-crafted SYN and UDP probes over a chosen network
interface and classifies each requested port as open, closed, or
filtered, for both IPv4 and IPv6 targets.

Examples:
  sondaj                              List local interfaces
  sondaj -i eth0 -t 1-1024 host        TCP SYN-scan ports 1-1024
  sondaj -i eth0 -u 53,123,161 host     UDP scan three ports
  sondaj -i eth0 -t 22,80,443 --tui host   Interactive TUI mode`,
	Args:              cobra.MaximumNArgs(1),
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
	RunE:              runScan,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ~/.config/sondaj/config.yaml)")

	rootCmd.Flags().StringVarP(&ifaceName, "interface", "i", "", "Network interface to probe on (omit to list interfaces)")
	rootCmd.Flags().StringVarP(&tcpPorts, "pt", "t", "", "TCP ports to scan (e.g. 1-1024 or 22,80,443)")
	rootCmd.Flags().StringVarP(&udpPorts, "pu", "u", "", "UDP ports to scan (e.g. 1-1024 or 53,123,161)")
	rootCmd.Flags().IntVarP(&waitMs, "wait", "w", 0, "Per-port wait budget, in milliseconds")
	rootCmd.Flags().IntVarP(&retransmissions, "retransmissions", "r", 0, "Resends before a port times out")
	rootCmd.Flags().IntVarP(&ratelimitMs, "ratelimit", "l", 0, "Minimum gap between UDP probes, in milliseconds")
	rootCmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored verdict output")
	rootCmd.Flags().BoolVar(&tuiMode, "tui", false, "Interactive TUI mode")
}

// loadConfig loads configuration from file and applies defaults for
// flags the caller didn't explicitly set.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error

	if cfgFile != "" {
		cfg, err = config.LoadFrom(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	} else {
		cfg, err = config.Load()
		if err != nil {
			cfg = config.DefaultConfig()
		}
	}

	applyConfigDefaults(cmd)
	return nil
}

func applyConfigDefaults(cmd *cobra.Command) {
	if cfg == nil {
		return
	}
	d := cfg.Defaults

	if !cmd.Flags().Changed("interface") && d.Interface != "" {
		ifaceName = d.Interface
	}
	if !cmd.Flags().Changed("wait") {
		waitMs = d.WaitMs
	}
	if !cmd.Flags().Changed("retransmissions") {
		retransmissions = d.Retransmissions
	}
	if !cmd.Flags().Changed("ratelimit") {
		ratelimitMs = d.RatelimitMs
	}
	if !cmd.Flags().Changed("no-color") && d.NoColor {
		noColor = true
	}
	if !cmd.Flags().Changed("tui") && d.TUI {
		tuiMode = true
	}

	if waitMs <= 0 {
		waitMs = 5000
	}
	if ratelimitMs <= 0 {
		ratelimitMs = 1000
	}
}

func runScan(cmd *cobra.Command, args []string) error {
	if ifaceName == "" {
		infos, err := ifaces.List()
		if err != nil {
			return fmt.Errorf("list interfaces: %w", err)
		}
		ifaces.WriteTable(os.Stdout, infos)
		return nil
	}

	if len(args) == 0 {
		return fmt.Errorf("a target host is required")
	}
	target := args[0]
	if cfg != nil {
		if alias, ok := cfg.Aliases[target]; ok {
			target = alias
		}
	}

	if tcpPorts == "" && udpPorts == "" {
		return fmt.Errorf("at least one of --pt or --pu is required")
	}

	ipAddrs, err := net.DefaultResolver.LookupIPAddr(cmd.Context(), target)
	if err != nil {
		return fmt.Errorf("resolve %q: %w", target, err)
	}
	if len(ipAddrs) == 0 {
		return fmt.Errorf("resolve %q: no addresses", target)
	}

	dest, err := endpoint.New(ipAddrs[0].IP, 0)
	if err != nil {
		return fmt.Errorf("resolve %q: %w", target, err)
	}

	src, err := ifaces.SourceEndpoint(ifaceName, dest.Family(), scanSourcePort)
	if err != nil {
		return fmt.Errorf("source address on %q: %w", ifaceName, err)
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var engines []*scan.Engine
	var portLists [][]int

	if tcpPorts != "" {
		ps, err := portset.Parse(tcpPorts)
		if err != nil {
			return fmt.Errorf("--pt: %w", err)
		}
		eng, err := scan.New(scan.Job{
			Source: src, Dest: dest, Interface: ifaceName, Protocol: scan.TCP,
			WaitMs: waitMs, Retransmissions: retransmissions,
		})
		if err != nil {
			return fmt.Errorf("open TCP scan on %q: %w", ifaceName, err)
		}
		defer eng.Close()
		engines = append(engines, eng)
		portLists = append(portLists, ps.Ports())
	}

	if udpPorts != "" {
		ps, err := portset.Parse(udpPorts)
		if err != nil {
			return fmt.Errorf("--pu: %w", err)
		}
		eng, err := scan.New(scan.Job{
			Source: src, Dest: dest, Interface: ifaceName, Protocol: scan.UDP,
			WaitMs: waitMs, Retransmissions: retransmissions, RateLimitMs: ratelimitMs,
		})
		if err != nil {
			return fmt.Errorf("open UDP scan on %q: %w", ifaceName, err)
		}
		defer eng.Close()
		engines = append(engines, eng)
		portLists = append(portLists, ps.Ports())
	}

	if tuiMode {
		return tui.Run(target, engines, portLists)
	}

	colors := !noColor && isatty.IsTerminal(os.Stdout.Fd())
	writer := scanout.NewWriter(os.Stdout, scanout.Config{Colors: colors})

	fmt.Printf("Interesting ports on %s (%s):\n", target, dest.IP())
	fmt.Println("PORT STATE")

	for i, eng := range engines {
		if err := eng.ScanPorts(ctx, portLists[i], writer.WriteVerdict); err != nil {
			writer.WriteSummary()
			return fmt.Errorf("scan: %w", err)
		}
	}
	writer.WriteSummary()

	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("sondaj %s\n", version)
		fmt.Printf("  Commit: %s\n", commit)
		fmt.Printf("  Built:  %s\n", date)
		fmt.Printf("  Config: %s\n", config.GetConfigPath())
	},
}

var (
	configInit bool
	configShow bool
	configPath bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage sondaj configuration file.

Commands:
  sondaj config --init     Create default config file
  sondaj config --show     Show current configuration
  sondaj config --path     Show config file path`,
	RunE: runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&configInit, "init", false, "Create default config file")
	configCmd.Flags().BoolVar(&configShow, "show", false, "Show current configuration")
	configCmd.Flags().BoolVar(&configPath, "path", false, "Show config file path")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	if configPath {
		fmt.Println(config.GetConfigPath())
		return nil
	}

	if configInit {
		path := config.GetConfigPath()
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists: %s", path)
		}
		if err := config.DefaultConfig().Save(); err != nil {
			return fmt.Errorf("failed to create config: %w", err)
		}
		fmt.Printf("Created config file: %s\n", path)
		return nil
	}

	if configShow {
		fmt.Println(config.GenerateExample())
		return nil
	}

	return cmd.Help()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets version information for the CLI.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}
