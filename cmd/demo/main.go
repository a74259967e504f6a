// In-process demonstration of the full ecash lifecycle. A mint is started
// on a loopback port, Alice mints notes, hands their value to Bob through
// a swap, Bob redeems, and Alice's attempt to double spend is rejected.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmto-xyz/dmto-core/crypto"
	"github.com/dmto-xyz/dmto-core/mint"
	"github.com/dmto-xyz/dmto-core/protocol"
	"github.com/dmto-xyz/dmto-core/services"
	"github.com/dmto-xyz/dmto-core/wallet"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "demo failed:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	// Start a mint with denominations 1, 2, 4, 8 on a loopback port.
	keyset, err := mint.NewKeyset([]uint64{1, 2, 4, 8})
	if err != nil {
		return err
	}

	signingKey, _, err := crypto.GenerateKeyPair()
	if err != nil {
		return err
	}

	m, err := mint.New(keyset, signingKey, services.NewMemorySpentStore(), log)
	if err != nil {
		return err
	}

	router := chi.NewRouter()
	mint.NewHandler(m).RegisterRoutes(router)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return err
	}
	server := &http.Server{Handler: router}
	go server.Serve(listener) //nolint:errcheck
	defer server.Shutdown(context.Background())

	mintURL := "http://" + listener.Addr().String()
	fmt.Println("mint listening at", mintURL)
	fmt.Println("keyset:", keyset.ID())
	fmt.Println()

	client := wallet.NewClient(mintURL)

	keys, err := client.GetSignedKeys(ctx)
	if err != nil {
		return err
	}

	alice, err := wallet.NewWallet(keys)
	if err != nil {
		return err
	}
	bob, err := wallet.NewWallet(keys)
	if err != nil {
		return err
	}

	// Alice mints 6, which splits into a 4 note and a 2 note.
	notes, err := alice.MintNotes(ctx, client, 6)
	if err != nil {
		return fmt.Errorf("alice minting: %w", err)
	}
	fmt.Printf("alice minted %d in %d notes, balance %d\n", notes.Total(), len(notes), alice.Balance())

	// Alice pays Bob: her notes become the inputs of a swap whose outputs
	// were blinded by Bob, so the notes Bob ends up with are unlinkable to
	// anything the mint saw before.
	payment, err := alice.SelectNotesToSend(6)
	if err != nil {
		return err
	}

	pending, err := bob.CreateBlindedMessages(payment.Total())
	if err != nil {
		return err
	}

	swapResp, err := client.Swap(ctx, &protocol.PostSwapRequest{Inputs: payment, Outputs: pending.Outputs})
	if err != nil {
		return fmt.Errorf("swapping alice's notes for bob: %w", err)
	}
	alice.RemoveNotes(payment)

	if _, err := bob.ConstructNotes(pending, swapResp.Signatures); err != nil {
		return fmt.Errorf("bob constructing notes: %w", err)
	}
	fmt.Printf("alice paid bob 6, balances now alice=%d bob=%d\n", alice.Balance(), bob.Balance())

	// Bob cashes out.
	if err := bob.RedeemNotes(ctx, client, 6); err != nil {
		return fmt.Errorf("bob redeeming: %w", err)
	}
	fmt.Printf("bob redeemed 6, balance %d\n", bob.Balance())

	// Alice kept copies of the notes she already spent. The mint remembers
	// their secrets and refuses them.
	if _, err := client.Redeem(ctx, &protocol.PostRedeemRequest{Notes: payment}); err != nil {
		fmt.Println("alice's double spend rejected:", err)
	} else {
		return fmt.Errorf("double spend was accepted")
	}

	return nil
}
