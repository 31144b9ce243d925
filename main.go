package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/apextelemetry/apextelemetry/config"
	"github.com/apextelemetry/apextelemetry/database"
	"github.com/apextelemetry/apextelemetry/logger"
	"github.com/apextelemetry/apextelemetry/util/common"
	"github.com/apextelemetry/apextelemetry/web"
	"github.com/apextelemetry/apextelemetry/web/service"

	"github.com/spf13/cobra"
)

func initLogger() {
	level, err := logger.ParseLevel(config.GetLogLevel())
	if err != nil {
		log.Fatal(err)
	}
	logger.InitLogger(level)
}

func runWebServer() {
	log.Printf("%v %v", config.GetName(), config.GetVersion())
	initLogger()
	defer logger.CloseLogger()

	err := database.InitDB(config.GetDBPath())
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		if err := database.CloseDB(); err != nil {
			logger.Warning("close database failed:", err)
		}
	}()

	server := web.NewServer(web.Options{})
	err = server.Start()
	if err != nil {
		log.Println(err)
		return
	}

	sigCh := make(chan os.Signal, 1)
	// Trap shutdown signals
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)
	for {
		sig := <-sigCh

		switch sig {
		case syscall.SIGHUP:
			logger.Info("reloading web server")
			err := server.Stop()
			if err != nil {
				logger.Warning("stop server err:", err)
			}
			server = web.NewServer(web.Options{})
			err = server.Start()
			if err != nil {
				log.Println(err)
				return
			}
		default:
			logger.Info("shutting down on", sig)
			if err := server.Stop(); err != nil {
				logger.Warning("stop server err:", err)
			}
			return
		}
	}
}

func openDB() error {
	path := config.GetDBPath()
	if f, err := os.Open(path); err == nil {
		ok, err := database.IsSQLiteDB(f)
		_ = f.Close()
		if err != nil || !ok {
			return common.NewErrorf("%s is not a SQLite database", path)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return database.InitDB(path)
}

func migrateDb() {
	if err := openDB(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer database.CloseDB()
	if err := database.Checkpoint(); err != nil {
		fmt.Println("checkpoint failed:", err)
		os.Exit(1)
	}
	fmt.Println("Migration done!")
}

func resetPassword(username, password string) {
	if username == "" || password == "" {
		fmt.Println("both --username and --password are required")
		os.Exit(1)
	}
	if err := openDB(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer database.CloseDB()

	userService := service.UserService{}
	if err := userService.ResetPassword(username, password); err != nil {
		fmt.Println("set password failed:", err)
		os.Exit(1)
	}
	fmt.Println("set password success")
}

func showUser(username string) {
	if err := openDB(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer database.CloseDB()

	userService := service.UserService{}
	user, err := userService.GetUserByUsername(username)
	if err != nil {
		fmt.Println("get user failed:", err)
		os.Exit(1)
	}
	fmt.Println("id:", user.Id)
	fmt.Println("username:", user.Username)
	fmt.Println("email:", user.Email)
	fmt.Println("created:", user.CreatedAt.Format("2006-01-02 15:04:05"))
}

func main() {
	if err := config.LoadEnv(); err != nil {
		log.Fatal(err)
	}

	var rootCmd = &cobra.Command{
		Use:   config.GetName(),
		Short: "F1 telemetry dashboard",
	}

	var runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the web server",
		Run: func(cmd *cobra.Command, args []string) {
			runWebServer()
		},
	}

	var migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		Run: func(cmd *cobra.Command, args []string) {
			migrateDb()
		},
	}

	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(config.GetName(), config.GetVersion())
		},
	}

	var userCmd = &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}

	var passwdCmd = &cobra.Command{
		Use:   "passwd",
		Short: "Reset a user's password",
		Run: func(cmd *cobra.Command, args []string) {
			username, _ := cmd.Flags().GetString("username")
			password, _ := cmd.Flags().GetString("password")
			resetPassword(username, password)
		},
	}

	passwdCmd.Flags().String("username", "", "account username")
	passwdCmd.Flags().String("password", "", "new password")

	var showCmd = &cobra.Command{
		Use:   "show",
		Short: "Show an account",
		Run: func(cmd *cobra.Command, args []string) {
			username, _ := cmd.Flags().GetString("username")
			showUser(username)
		},
	}

	showCmd.Flags().String("username", "", "account username")
	_ = showCmd.MarkFlagRequired("username")

	userCmd.AddCommand(passwdCmd, showCmd)

	rootCmd.AddCommand(runCmd, migrateCmd, versionCmd, userCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
