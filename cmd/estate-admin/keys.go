package main

import (
	"encoding/base64"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/estatehub/estate-api/internal/adapters/tokens"
)

type keysOptions struct {
	Bits int
}

// runKeysGenerate prints two independent key pairs in the base64 PEM form that
// AUTH_*_KEY variables expect.
func runKeysGenerate(cmdCtx *commandContext, args []string) error {
	opts, err := parseKeysFlags(args)
	if err != nil {
		return err
	}
	return generateKeys(cmdCtx.Out, opts.Bits)
}

func parseKeysFlags(args []string) (keysOptions, error) {
	fs := flag.NewFlagSet("keys-generate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := keysOptions{}
	fs.IntVar(&opts.Bits, "bits", tokens.MinKeyBits, "RSA modulus size in bits")

	if err := fs.Parse(args); err != nil {
		return keysOptions{}, err
	}
	if opts.Bits < tokens.MinKeyBits {
		return keysOptions{}, fmt.Errorf("--bits must be at least %d", tokens.MinKeyBits)
	}
	return opts, nil
}

func generateKeys(out io.Writer, bits int) error {
	for _, kind := range []string{"ACCESS", "REFRESH"} {
		priv, pub, err := tokens.GenerateKeyPairPEM(bits)
		if err != nil {
			return fmt.Errorf("generate %s key pair: %w", kind, err)
		}
		if err := writef(out, "AUTH_%s_PRIVATE_KEY=%s\n", kind, base64.StdEncoding.EncodeToString(priv)); err != nil {
			return err
		}
		if err := writef(out, "AUTH_%s_PUBLIC_KEY=%s\n", kind, base64.StdEncoding.EncodeToString(pub)); err != nil {
			return err
		}
	}
	return nil
}
