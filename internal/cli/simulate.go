package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/afritokeni/ussd-engine/internal/config"
	"github.com/afritokeni/ussd-engine/internal/logger"
	"github.com/afritokeni/ussd-engine/internal/model"
	"github.com/afritokeni/ussd-engine/internal/notify"
	"github.com/afritokeni/ussd-engine/internal/rates"
	"github.com/afritokeni/ussd-engine/internal/repository/memory"
	"github.com/afritokeni/ussd-engine/internal/ussd"
)

const (
	demoPhone = "256700000001"
	demoPIN   = "1234"
)

type simulateOptions struct {
	phone string
	seed  bool
}

func newSimulateCommand() *cobra.Command {
	opts := simulateOptions{}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Drive the menus from the terminal against in-memory stores",
		Long: `Reads one USSD reply per line from stdin, the way a handset would send
it, and prints the engine's response. Enter the dial code to start over.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.NewConfig()
			if err != nil {
				return err
			}
			log := logger.NewWithWriter(os.Stderr, cfg.LogLevel)

			engine, err := newSimulatorEngine(cmd.Context(), cfg, opts, log)
			if err != nil {
				return err
			}

			sim := newSimulator(engine, opts.phone, cfg.USSD.DialCode)
			interactive := term.IsTerminal(int(os.Stdin.Fd()))
			return sim.run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), interactive)
		},
	}

	cmd.Flags().StringVar(&opts.phone, "phone", "+"+demoPhone, "phone number of the simulated handset")
	cmd.Flags().BoolVar(&opts.seed, "seed", true, "register the demo subscriber with balances, agents and a proposal")

	return cmd
}

func newSimulatorEngine(ctx context.Context, cfg *config.Config, opts simulateOptions, log *logger.Logger) (*ussd.Engine, error) {
	tariffs, err := config.LoadTariffs(cfg.USSD.TariffsFile)
	if err != nil {
		return nil, err
	}

	ledger := memory.NewLedger()
	gov := memory.NewGovernance()
	if opts.seed {
		if err := seedDemo(ctx, ledger, gov); err != nil {
			return nil, err
		}
	}

	deps := ussd.Collaborators{
		Users:      ledger,
		Wallet:     ledger,
		Agents:     ledger,
		Requests:   ledger,
		Notifier:   notify.NewLog(log),
		Rates:      rates.NewStatic(cfg.USSD.Currency, tariffs.Rates, time.Now()),
		Governance: gov,
	}
	return ussd.NewEngine(memory.NewSessionStore(), deps, engineConfig(cfg, tariffs), log), nil
}

func seedDemo(ctx context.Context, ledger *memory.Ledger, gov *memory.Governance) error {
	if _, err := ledger.Register(ctx, model.User{Phone: demoPhone, FullName: "Demo Subscriber", Currency: "UGX"}); err != nil {
		return fmt.Errorf("failed to seed subscriber: %w", err)
	}
	if err := ledger.SetPIN(ctx, demoPhone, demoPIN); err != nil {
		return fmt.Errorf("failed to seed pin: %w", err)
	}
	if _, err := ledger.Register(ctx, model.User{Phone: "256700000002", FullName: "Demo Friend", Currency: "UGX"}); err != nil {
		return fmt.Errorf("failed to seed friend: %w", err)
	}

	for asset, amount := range map[string]int64{"UGX": 500_000, model.AssetBTC: 250_000, model.AssetUSDC: 5_000} {
		if err := ledger.UpdateBalance(ctx, demoPhone, asset, amount); err != nil {
			return fmt.Errorf("failed to seed balance: %w", err)
		}
	}

	ledger.AddAgent(model.Agent{ID: "agent-kla-1", Name: "Kampala Central", Location: "Kampala Road", Phone: "256700100001"})
	ledger.AddAgent(model.Agent{ID: "agent-ebb-1", Name: "Entebbe Town", Location: "Entebbe", Phone: "256700100002"})

	gov.AddProposal(model.Proposal{ID: "afri-1", Title: "Lower withdrawal fee to 1.5%", EndsAt: time.Now().Add(7 * 24 * time.Hour)})
	gov.SetTokens(demoPhone, 1_000)
	return nil
}

type processor interface {
	Process(ctx context.Context, sessionID, phoneNumber, text string) ussd.Response
}

// simulator plays the gateway: it accumulates replies into the text field
// and starts a new session after every END.
type simulator struct {
	engine    processor
	phone     string
	dialCode  string
	sessionID string
	text      string
}

func newSimulator(engine processor, phone, dialCode string) *simulator {
	return &simulator{
		engine:   engine,
		phone:    phone,
		dialCode: dialCode,
	}
}

func (s *simulator) send(ctx context.Context, line string) ussd.Response {
	line = strings.TrimSpace(line)
	switch {
	case s.sessionID == "" || line == s.dialCode:
		s.sessionID = uuid.NewString()
		s.text = s.dialCode
	case s.text == s.dialCode:
		s.text = line
	default:
		s.text += "*" + line
	}

	resp := s.engine.Process(ctx, s.sessionID, s.phone, s.text)
	if !resp.Continue {
		s.sessionID = ""
		s.text = ""
	}
	return resp
}

func (s *simulator) run(ctx context.Context, in io.Reader, out io.Writer, interactive bool) error {
	if interactive {
		fmt.Fprintf(out, "Dial %s to start, Ctrl-D to quit.\n", s.dialCode)
	}

	scanner := bufio.NewScanner(in)
	for {
		if interactive {
			fmt.Fprint(out, "> ")
		}
		if !scanner.Scan() {
			break
		}
		if ctx.Err() != nil {
			return nil
		}

		resp := s.send(ctx, scanner.Text())
		fmt.Fprintln(out, resp.Wire())
		if interactive {
			fmt.Fprintln(out)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	return nil
}
