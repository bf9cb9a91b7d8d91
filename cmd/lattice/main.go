// lattice is the command line front end: run scripts, evaluate one-off
// expressions, or start a REPL.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	lattice "github.com/ajokela/lattice-sub005"
)

var (
	flagDebug  bool
	flagConfig string

	logger *zap.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "lattice",
	Short:         "The Lattice scripting language",
	Long:          "Lattice is a dynamically typed scripting language built around value phases: values freeze, thaw, bond and react as the program runs.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}
		return initLogger()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default ~/.lattice.toml)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(replCmd)
	rootCmd.AddCommand(evalCmd)
	rootCmd.AddCommand(versionCmd)
}

func loadConfig() error {
	if flagConfig != "" {
		viper.SetConfigFile(flagConfig)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(".lattice")
		viper.SetConfigType("toml")
	}
	viper.SetEnvPrefix("LATTICE")
	viper.AutomaticEnv()
	viper.SetDefault("debug", false)
	viper.SetDefault("history_file", filepath.Join("~", ".lattice_history"))

	if err := viper.ReadInConfig(); err != nil {
		// A missing config file is fine unless one was named explicitly.
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && flagConfig == "" {
			return nil
		}
		if os.IsNotExist(err) && flagConfig == "" {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func initLogger() error {
	debug := flagDebug || viper.GetBool("debug")
	if !debug {
		logger = zap.NewNop()
		return nil
	}
	cfg := zap.NewDevelopmentConfig()
	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger = l
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the interpreter version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("lattice", lattice.Version)
	},
}

var evalCmd = &cobra.Command{
	Use:   "eval <expression>",
	Short: "Evaluate a single expression and print the result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ip := lattice.NewInterpreter(lattice.WithLogger(logger))
		v, err := ip.EvalSource("<eval>", args[0])
		if err != nil {
			return lattice.WrapErrorWithName(err, "<eval>", args[0])
		}
		fmt.Println(lattice.Display(v))
		return nil
	},
}
