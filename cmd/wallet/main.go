// Command-line wallet for a single mint. Notes are kept in a local JSON
// file between invocations; each run performs one action against the mint.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dmto-xyz/dmto-core/protocol"
	"github.com/dmto-xyz/dmto-core/wallet"
)

var (
	mintURL    = flag.String("mint", "http://127.0.0.1:8080", "base URL of the mint")
	walletFile = flag.String("file", "wallet.json", "path to the wallet state file")
	timeout    = flag.Duration("timeout", 30*time.Second, "request timeout")

	showBalance  = flag.Bool("balance", false, "print the wallet balance")
	mintAmount   = flag.Uint64("mint-amount", 0, "request issuance of this amount")
	swapAmount   = flag.Uint64("swap", 0, "swap notes covering this amount for fresh ones")
	redeemAmount = flag.Uint64("redeem", 0, "redeem notes covering this amount")
)

// walletState is the on-disk form of the wallet. Secrets are stored in
// the clear; the file is the bearer instrument.
type walletState struct {
	MintURL  string         `json:"mint_url"`
	KeysetID string         `json:"keyset_id"`
	Notes    protocol.Notes `json:"notes"`
}

func main() {
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if err := run(log); err != nil {
		log.Error("wallet command failed", "err", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client := wallet.NewClient(*mintURL)

	keys, err := client.GetSignedKeys(ctx)
	if err != nil {
		return fmt.Errorf("fetching mint keys: %w", err)
	}

	w, err := wallet.NewWallet(keys)
	if err != nil {
		return err
	}

	state, err := loadState(*walletFile)
	if err != nil {
		return err
	}
	if state != nil {
		if state.KeysetID != w.KeysetID() {
			return fmt.Errorf("wallet file holds notes for keyset %s, mint serves %s", state.KeysetID, w.KeysetID())
		}
		w.AddNotes(state.Notes)
	}

	switch {
	case *mintAmount > 0:
		notes, err := w.MintNotes(ctx, client, *mintAmount)
		if err != nil {
			return fmt.Errorf("minting %d: %w", *mintAmount, err)
		}
		log.Info("minted notes", "amount", notes.Total(), "count", len(notes))

	case *swapAmount > 0:
		notes, err := w.SwapNotes(ctx, client, *swapAmount)
		if err != nil {
			return fmt.Errorf("swapping %d: %w", *swapAmount, err)
		}
		log.Info("swapped for fresh notes", "amount", notes.Total(), "count", len(notes))

	case *redeemAmount > 0:
		if err := w.RedeemNotes(ctx, client, *redeemAmount); err != nil {
			return fmt.Errorf("redeeming %d: %w", *redeemAmount, err)
		}
		log.Info("redeemed notes", "amount", *redeemAmount)

	case *showBalance:
		// Nothing to do, balance is printed below.

	default:
		flag.Usage()
		return errors.New("no action given")
	}

	fmt.Printf("balance: %d\n", w.Balance())

	return saveState(*walletFile, &walletState{
		MintURL:  *mintURL,
		KeysetID: w.KeysetID(),
		Notes:    w.Notes(),
	})
}

func loadState(path string) (*walletState, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading wallet file: %w", err)
	}

	state := new(walletState)
	if err := json.Unmarshal(raw, state); err != nil {
		return nil, fmt.Errorf("parsing wallet file %s: %w", path, err)
	}
	return state, nil
}

func saveState(path string, state *walletState) error {
	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("writing wallet file: %w", err)
	}
	return nil
}
