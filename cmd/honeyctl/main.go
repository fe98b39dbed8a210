// honeyctl drives the honeypot backend's REST API from the command line.
//
// Usage:
//
//	honeyctl [--url URL] [--api-key KEY] <command> [flags] [args]
//
// Commands:
//
//	list                         list honeypots as display records
//	config <id>                  show a honeypot's configuration
//	set-config <id> [flags]      replace a honeypot's configuration
//	enable <id> | disable <id>   toggle monitoring
//	delete <id>                  remove a honeypot
//	deploy [flags]               create a honeypot
//	star <id>                    toggle the starred flag
//	reset                        reset every honeypot
//	settings                     show global settings
//	set-settings [flags]         replace global settings
//	status                       show threat status
//	attack [flags]               simulate an attack
//	reduce [flags]               reduce the threat level
//	crypto <classical|post_quantum>
//	metrics                      show system metrics
//	transactions [--limit N]     show recent transactions
//	history [--hours N]          show hourly threat history
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/honeywatch/console/internal/api"
	"github.com/honeywatch/console/internal/config"
	"github.com/honeywatch/console/internal/display"
	"github.com/honeywatch/console/internal/model"
)

var errUsage = errors.New("usage")

func main() {
	baseURL := flag.String("url", envOr("CONSOLE_API_URL", config.DefaultBaseURL), "backend base URL")
	apiKey := flag.String("api-key", os.Getenv("CONSOLE_API_KEY"), "bearer token")
	timeout := flag.Duration("timeout", 30*time.Second, "request timeout")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client := api.NewClient(*baseURL, *apiKey, api.WithTimeout(*timeout))

	err := run(ctx, client, os.Stdout, flag.Arg(0), flag.Args()[1:])
	switch {
	case errors.Is(err, errUsage):
		usage()
		os.Exit(2)
	case err != nil:
		fmt.Fprintf(os.Stderr, "honeyctl: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: honeyctl [--url URL] [--api-key KEY] <command> [flags] [args]")
	fmt.Fprintln(os.Stderr, "commands: list config set-config enable disable delete deploy star reset")
	fmt.Fprintln(os.Stderr, "          settings set-settings status attack reduce crypto metrics transactions history")
	flag.PrintDefaults()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// run executes one command, writing its result to out.
func run(ctx context.Context, c *api.Client, out io.Writer, cmd string, args []string) error {
	switch cmd {
	case "list":
		hps, err := c.ListHoneypots(ctx)
		if err != nil {
			return err
		}
		return printAssets(out, display.TransformAll(hps, time.Now()))

	case "config":
		id, err := oneArg(args)
		if err != nil {
			return err
		}
		cfg, err := c.GetHoneypotConfig(ctx, id)
		if err != nil {
			return err
		}
		return printJSON(out, cfg)

	case "set-config":
		return setConfig(ctx, c, out, args)

	case "enable", "disable", "delete":
		id, err := oneArg(args)
		if err != nil {
			return err
		}
		switch cmd {
		case "enable":
			err = c.EnableHoneypot(ctx, id)
		case "disable":
			err = c.DisableHoneypot(ctx, id)
		default:
			err = c.DeleteHoneypot(ctx, id)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%sd %s\n", trimE(cmd), id)
		return nil

	case "deploy":
		return deploy(ctx, c, out, args)

	case "star":
		id, err := oneArg(args)
		if err != nil {
			return err
		}
		starred, err := c.ToggleStar(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s starred=%t\n", id, starred)
		return nil

	case "reset":
		n, err := c.ResetHoneypots(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "reset %d honeypots\n", n)
		return nil

	case "settings":
		s, err := c.GetSettings(ctx)
		if err != nil {
			return err
		}
		return printJSON(out, s)

	case "set-settings":
		return setSettings(ctx, c, out, args)

	case "status":
		st, err := c.GetStatus(ctx)
		if err != nil {
			return err
		}
		return printJSON(out, st)

	case "attack":
		fs := flag.NewFlagSet("attack", flag.ContinueOnError)
		intensity := fs.Float64("intensity", 50, "threat increase, 0-100")
		duration := fs.Int("duration", 0, "seconds until the increase is reverted (0 = never)")
		if err := fs.Parse(args); err != nil {
			return errUsage
		}
		st, err := c.SimulateAttack(ctx, api.SimulateAttackRequest{Intensity: *intensity, Duration: *duration})
		if err != nil {
			return err
		}
		return printJSON(out, st)

	case "reduce":
		fs := flag.NewFlagSet("reduce", flag.ContinueOnError)
		amount := fs.Float64("amount", 10, "threat decrease, 0-100")
		if err := fs.Parse(args); err != nil {
			return errUsage
		}
		st, err := c.ReduceThreat(ctx, *amount)
		if err != nil {
			return err
		}
		return printJSON(out, st)

	case "crypto":
		method, err := oneArg(args)
		if err != nil {
			return err
		}
		if err := c.SwitchCryptoMethod(ctx, model.CryptoMethod(method)); err != nil {
			return err
		}
		fmt.Fprintf(out, "switched to %s\n", method)
		return nil

	case "metrics":
		m, err := c.GetMetrics(ctx)
		if err != nil {
			return err
		}
		return printJSON(out, m)

	case "transactions":
		fs := flag.NewFlagSet("transactions", flag.ContinueOnError)
		limit := fs.Int("limit", 10, "number of transactions")
		if err := fs.Parse(args); err != nil {
			return errUsage
		}
		txs, err := c.GetTransactions(ctx, *limit)
		if err != nil {
			return err
		}
		return printJSON(out, txs)

	case "history":
		fs := flag.NewFlagSet("history", flag.ContinueOnError)
		hours := fs.Int("hours", 24, "hours of history")
		if err := fs.Parse(args); err != nil {
			return errUsage
		}
		hist, err := c.GetThreatHistory(ctx, *hours)
		if err != nil {
			return err
		}
		return printJSON(out, hist)

	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func setConfig(ctx context.Context, c *api.Client, out io.Writer, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	id := args[0]

	fs := flag.NewFlagSet("set-config", flag.ContinueOnError)
	sensitivity := fs.String("sensitivity", string(model.ThreatMedium), "low, medium or high")
	protection := fs.String("protection", model.ProtectionECDSA, "rsa or ecdsa")
	autoResponse := fs.Bool("auto-response", true, "respond automatically when triggered")
	routing := fs.String("routing", string(model.CryptoClassical), "classical or post_quantum")
	if err := fs.Parse(args[1:]); err != nil {
		return errUsage
	}

	cfg := model.HoneypotConfig{
		MonitoringSensitivity: model.ThreatLevel(*sensitivity),
		ProtectionType:        *protection,
		AutoResponse:          *autoResponse,
		RoutingMethod:         model.CryptoMethod(*routing),
	}
	if err := c.UpdateHoneypotConfig(ctx, id, cfg); err != nil {
		return err
	}
	fmt.Fprintf(out, "updated config for %s\n", id)
	return nil
}

func deploy(ctx context.Context, c *api.Client, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("deploy", flag.ContinueOnError)
	name := fs.String("name", "", "display name (required)")
	chain := fs.String("blockchain", model.ChainEthereum, "ethereum, bitcoin or quantum")
	protection := fs.String("protection", model.ProtectionECDSA, "rsa or ecdsa")
	sensitivity := fs.String("sensitivity", string(model.ThreatMedium), "low, medium or high")
	autoResponse := fs.Bool("auto-response", true, "respond automatically when triggered")
	description := fs.String("description", "", "free-form description")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	hp, err := c.DeployHoneypot(ctx, model.DeployRequest{
		Name:                  *name,
		Blockchain:            *chain,
		ProtectionType:        *protection,
		MonitoringSensitivity: model.ThreatLevel(*sensitivity),
		AutoResponse:          *autoResponse,
		Description:           *description,
	})
	if err != nil {
		return err
	}
	return printJSON(out, display.Transform(*hp, time.Now()))
}

func setSettings(ctx context.Context, c *api.Client, out io.Writer, args []string) error {
	// Start from the current settings so unset flags keep their values.
	current, err := c.GetSettings(ctx)
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("set-settings", flag.ContinueOnError)
	email := fs.Bool("email-alerts", current.EmailAlerts, "send email alerts")
	push := fs.Bool("push-notifications", current.PushNotifications, "send push notifications")
	threshold := fs.String("threshold", string(current.ThreatThreshold), "low, medium or high")
	autoResponse := fs.Bool("auto-response", current.AutoResponse, "respond automatically")
	interval := fs.Int("interval", current.MonitoringInterval, "monitoring interval in seconds, 1-3600")
	retention := fs.Int("retention", current.RetentionPeriod, "retention in days, 1-365")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	s := model.SystemSettings{
		EmailAlerts:        *email,
		PushNotifications:  *push,
		ThreatThreshold:    model.ThreatLevel(*threshold),
		AutoResponse:       *autoResponse,
		MonitoringInterval: *interval,
		RetentionPeriod:    *retention,
	}
	if err := c.UpdateSettings(ctx, s); err != nil {
		return err
	}
	fmt.Fprintln(out, "settings updated")
	return nil
}

func oneArg(args []string) (string, error) {
	if len(args) != 1 {
		return "", errUsage
	}
	return args[0], nil
}

// trimE drops a trailing e so appending "d" gives the past tense.
func trimE(verb string) string {
	if verb != "" && verb[len(verb)-1] == 'e' {
		return verb[:len(verb)-1]
	}
	return verb
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printAssets(out io.Writer, assets []model.Asset) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSYMBOL\tSTATUS\tTHREAT\tBALANCE\tVALUE\tCHANGE\tADDRESS\tLAST ACTIVITY")
	for _, a := range assets {
		star := ""
		if a.Starred {
			star = " *"
		}
		fmt.Fprintf(w, "%s\t%s%s\t%s\t%s\t%s\t%s\t%s\t%+.1f%%\t%s\t%s\n",
			a.ID, a.Name, star, a.Symbol, a.StatusLabel, a.ThreatLevel,
			a.Balance, a.Value, a.Change, a.Address, a.LastActivity)
	}
	return w.Flush()
}
