package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ISE-SMILE/openwhisk-runtime-docker/internal/log"
	"github.com/ISE-SMILE/openwhisk-runtime-docker/internal/proxy"
	"github.com/ISE-SMILE/openwhisk-runtime-docker/internal/runner"
)

var (
	userConfigPath string // /default/config/path/actionproxy on given OS
	configPath     string // actual config file used (if loaded)
	config         proxy.Config

	flagConfigFilePath string // value of --config flag
	flagVerbose        bool   // value of --verbose flag
)

func init() {
	d, err := os.UserConfigDir()
	if err != nil {
		panic(err)
	}
	userConfigPath = filepath.Join(d, "actionproxy")
}

func main() {
	// root flags
	rootCmd.PersistentFlags().StringVar(&flagConfigFilePath, "config", "", "Config file to load - default is actionproxy.yaml in current directory or in "+userConfigPath)
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "verbose logging")

	// never print messages
	rootCmd.SilenceErrors = true

	// parse or create a config, setup logging
	rootCmd.PersistentPreRunE = initProxy

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		slog.Error("actionproxy failed", "err", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "actionproxy",
	Short:        "Bridges the OpenWhisk invoker to an action executable in this container",
	SilenceUsage: true,
	// the bare binary serves, it is the container entrypoint
	RunE: doServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "serve answers the invoker's /init and /run contract over HTTP",
	RunE:  doServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "version provides version of the action proxy",
	Run: func(cmd *cobra.Command, args []string) {
		info, ok := debug.ReadBuildInfo()
		if !ok {
			fmt.Println("actionproxy: version info not available")
		}

		if configPath != "" {
			fmt.Printf("config: %s\n", configPath)
		}
		fmt.Printf("actionproxy: %s\n", info.Main.Version)
		fmt.Printf("go:          %s\n", info.GoVersion)
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				fmt.Printf("commit: %s\n", s.Value)
			case "vcs.time":
				fmt.Printf("date:   %s\n", s.Value)
			case "vcs.modified":
				fmt.Printf("dirty:  %s\n", s.Value)
			}
		}
		fmt.Println()
	},
}

func doServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	attrs := slog.Group("actionproxy",
		slog.String("cmd", "serve"),
		slog.Int("pid", os.Getpid()),
	)
	ctx = log.ContextAttrs(ctx, attrs)

	r := config.Runner(runner.NopHooks{})
	p := proxy.New(r)
	return proxy.Serve(ctx, config.Port, p.Routes())
}

func initProxy(cmd *cobra.Command, _ []string) error {
	if envConfig, ok := os.LookupEnv("PROXYCONFIG"); ok {
		configPath = envConfig
	} else if flagConfigFilePath != "" {
		configPath = flagConfigFilePath
	} else {
		for _, d := range []string{userConfigPath, "."} {
			path := filepath.Join(d, "actionproxy.yaml")
			if exists(path) {
				configPath = path
				break
			}
		}
	}

	// store default configuration
	if configPath == "" {
		configPath = filepath.Join(userConfigPath, "actionproxy.yaml")
		err := os.MkdirAll(filepath.Dir(configPath), 0755)
		if err != nil {
			return fmt.Errorf("creating directory %s: %w", filepath.Dir(configPath), err)
		}

		f, err := os.Create(configPath)
		if err != nil {
			return fmt.Errorf("creating file %s: %w", configPath, err)
		}
		defer func() {
			_ = f.Close()
		}()
		defaults := map[string]proxy.Config{"proxy": {
			Port:   proxy.DefaultPort,
			Binary: runner.DefaultBinary,
		}}
		enc := yaml.NewEncoder(f)
		err = enc.Encode(defaults)
		if err != nil {
			return fmt.Errorf("storing configuration: %w", err)
		}
	} else {
		viper.SetConfigFile(configPath)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", configPath, err)
		}
	}

	var err error
	config, err = proxy.ParseConfig("proxy")
	if err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}

	// --verbose has a precedence over config file
	if flagVerbose {
		config.Verbose = true
	}

	// initialize logging
	slog.SetDefault(log.New(os.Stderr, config.Verbose))

	slog.Debug("actionproxy run", "configPath", configPath)
	slog.Debug("actionproxy run", "config", config)
	return nil
}

func exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
