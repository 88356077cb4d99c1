package rolodex

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tarmac-project/hord/drivers/hashmap"
	"github.com/tarmac-project/hord/drivers/redis"
)

func init() {
	cobra.EnableCaseInsensitive = true
}

// RunCLI is an alternative entrypoint to running the API beyond just Serve. It
// allows running a server or client based on the provided CLI arguments. Use
// this in your main() function
func (a *API) RunCLI() {
	err := a.Command().Execute()
	if err != nil {
		fmt.Printf("error: %v\n", err)
	}
}

type cliArgs struct {
	address string
	pretty  bool
	data    string
}

// PrintableResponse allows CLI methods to generically return a type that can
// be written to out
type PrintableResponse interface {
	Fprint(out io.Writer, pretty bool) error
}

// Command builds the root CLI command. Configuration is resolved through viper
// so every flag can also be set with a ROLODEX_-prefixed environment variable
func (a *API) Command() *cobra.Command {
	viper.SetDefault("address", ":8080")
	viper.SetEnvPrefix("rolodex")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:   "rolodex",
		Short: "names directory served over a CRUD REST API",
		RunE:  a.serveCmd,
	}
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "run the API server",
		RunE:  a.serveCmd,
	}

	rootCmd.PersistentFlags().String("address", "", "bind address for server or target host address for client")
	rootCmd.PersistentFlags().Bool("seed", false, "insert the demo records on startup")
	rootCmd.PersistentFlags().String("storage-file", "", "file to persist records to, in-memory when empty")
	rootCmd.PersistentFlags().String("redis-host", "", "host of Redis instance to store records in")
	rootCmd.PersistentFlags().String("redis-password", "", "password for Redis instance")

	for _, flag := range []string{"address", "seed", "storage-file", "redis-host", "redis-password"} {
		_ = viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag))
	}

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(a.clientCommand())

	return rootCmd
}

func (a *API) serveCmd(cmd *cobra.Command, _ []string) error {
	err := a.configureStorage()
	if err != nil {
		return err
	}

	if viper.GetBool("seed") {
		err = a.Seed(cmd.Context())
		if err != nil {
			return fmt.Errorf("error seeding records: %w", err)
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-quit
		a.Stop()
	}()

	return a.Serve(viper.GetString("address"))
}

// configureStorage replaces the default in-memory map with a hord backend when
// a file or Redis connection is configured
func (a *API) configureStorage() error {
	switch {
	case viper.GetString("redis-host") != "":
		db, err := NewRedisDB(redis.Config{
			Server:   viper.GetString("redis-host") + ":6379",
			Password: viper.GetString("redis-password"),
		})
		if err != nil {
			return fmt.Errorf("error connecting to redis: %w", err)
		}
		a.SetStorage(NewKVStorage(db, "record"))
	case viper.GetString("storage-file") != "":
		db, err := NewFileDB(hashmap.Config{
			Filename: viper.GetString("storage-file"),
		})
		if err != nil {
			return fmt.Errorf("error opening storage file: %w", err)
		}
		a.SetStorage(NewKVStorage(db, "record"))
	}

	return nil
}

func (a *API) clientCommand() *cobra.Command {
	clientCmd := &cobra.Command{
		Use:   "client",
		Short: "HTTP client for interacting with record resources",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.cliArgs.address = viper.GetString("address")
			if a.cliArgs.address == "" || a.cliArgs.address == ":8080" {
				a.cliArgs.address = "http://localhost:8080"
			}
		},
	}

	clientCmd.PersistentFlags().BoolVar(&a.cliArgs.pretty, "pretty", true, "pretty print JSON if enabled")

	runE := func(cmd *cobra.Command, args []string) error {
		result, err := a.runClientFromCLI(cmd, args)
		if err != nil {
			return fmt.Errorf("error running client from CLI: %w", err)
		}

		return result.Fprint(cmd.OutOrStdout(), a.cliArgs.pretty)
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "make a GET request to list records",
		RunE:  runE,
	}
	getCmd := &cobra.Command{
		Use:   "get LASTNAME",
		Short: "make a GET request to get a record by last name",
		Args:  cobra.ExactArgs(1),
		RunE:  runE,
	}
	deleteCmd := &cobra.Command{
		Use:   "delete LASTNAME",
		Short: "make a DELETE request to delete a record by last name",
		Args:  cobra.ExactArgs(1),
		RunE:  runE,
	}
	postCmd := &cobra.Command{
		Use:   "post",
		Short: "make a POST request to create a new record",
		RunE:  runE,
	}
	putCmd := &cobra.Command{
		Use:   "put LASTNAME",
		Short: "make a PUT request to update a record by last name",
		Args:  cobra.ExactArgs(1),
		RunE:  runE,
	}

	postCmd.Flags().StringVarP(&a.cliArgs.data, "data", "d", "", "data for request body")
	putCmd.Flags().StringVarP(&a.cliArgs.data, "data", "d", "", "data for request body")

	_ = postCmd.MarkFlagRequired("data")
	_ = putCmd.MarkFlagRequired("data")

	clientCmd.AddCommand(listCmd)
	clientCmd.AddCommand(getCmd)
	clientCmd.AddCommand(postCmd)
	clientCmd.AddCommand(putCmd)
	clientCmd.AddCommand(deleteCmd)

	return clientCmd
}

func (a *API) runClientFromCLI(cmd *cobra.Command, args []string) (PrintableResponse, error) {
	client := NewClient(a.cliArgs.address)
	ctx := cmd.Context()

	switch cmd.Name() {
	case "list":
		return client.GetAll(ctx, "")
	case "get":
		return client.Get(ctx, args[0])
	case "post":
		return client.PostRaw(ctx, a.cliArgs.data)
	case "put":
		return client.PutRaw(ctx, args[0], a.cliArgs.data)
	case "delete":
		return client.Delete(ctx, args[0])
	default:
		return nil, fmt.Errorf("missing http verb argument")
	}
}
