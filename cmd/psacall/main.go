package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"

	"xdao.co/psacall/client"
	"xdao.co/psacall/grpcchan"
	"xdao.co/psacall/softserv"
	"xdao.co/psacall/wire"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	switch args[0] {
	case "hash":
		return cmdHash(args[1:], out, errOut)
	case "random":
		return cmdRandom(args[1:], out, errOut)
	case "seal":
		return cmdSeal(args[1:], out, errOut)
	case "open":
		return cmdOpen(args[1:], out, errOut)
	case "sign":
		return cmdSign(args[1:], out, errOut)
	case "verify":
		return cmdVerify(args[1:], out, errOut)
	case "derive":
		return cmdDerive(args[1:], out, errOut)
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "psacall: crypto service CLI")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  psacall hash [--alg sha256|sha512|sha3-256] [--remote addr] <file>")
	fmt.Fprintln(w, "  psacall random [--n <bytes>] [--remote addr]")
	fmt.Fprintln(w, "  psacall seal --key-hex <hex> [--alg aes-gcm|chacha20-poly1305] [--remote addr] <file>")
	fmt.Fprintln(w, "  psacall open --key-hex <hex> [--alg aes-gcm|chacha20-poly1305] [--remote addr] <file>")
	fmt.Fprintln(w, "  psacall sign --seed-hex <64hex> [--remote addr] <file>")
	fmt.Fprintln(w, "  psacall verify --seed-hex <64hex> --sig-hex <hex> [--remote addr] <file>")
	fmt.Fprintln(w, "  psacall derive --secret-hex <hex> [--salt-hex <hex>] [--info <text>] [--n <bytes>] [--remote addr]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - without --remote everything runs against an in-process service")
	fmt.Fprintln(w, "  - seal writes nonce||ciphertext to stdout; open expects the same framing")
	fmt.Fprintln(w, "  - keys handed in by flag are imported as volatile keys for the call")
}

// newClient builds a client over either the in-process service or a
// remote daemon.
func newClient(remote string) (*client.Client, func(), error) {
	if remote == "" {
		return client.New(softserv.New()), func() {}, nil
	}
	cc, err := grpcchan.Dial(remote, grpcchan.DialOptions{})
	if err != nil {
		return nil, nil, err
	}
	return client.New(cc), func() { _ = cc.Close() }, nil
}

func parseHashAlg(name string) (wire.Algorithm, bool) {
	switch name {
	case "", "sha256":
		return softserv.AlgSHA256, true
	case "sha512":
		return softserv.AlgSHA512, true
	case "sha3-256":
		return softserv.AlgSHA3_256, true
	default:
		return 0, false
	}
}

func hashSize(alg wire.Algorithm) int {
	if alg == softserv.AlgSHA512 {
		return 64
	}
	return 32
}

func cmdHash(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("hash", flag.ContinueOnError)
	fs.SetOutput(errOut)
	algName := fs.String("alg", "sha256", "Digest algorithm")
	remote := fs.String("remote", "", "Daemon address (empty = in-process)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: psacall hash [--alg sha256|sha512|sha3-256] [--remote addr] <file>")
		return 2
	}
	alg, ok := parseHashAlg(*algName)
	if !ok {
		fmt.Fprintf(errOut, "unknown --alg: %s\n", *algName)
		return 2
	}
	b, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "read: %v\n", err)
		return 1
	}
	c, closeFn, err := newClient(*remote)
	if err != nil {
		fmt.Fprintf(errOut, "dial: %v\n", err)
		return 1
	}
	defer closeFn()

	digest := make([]byte, hashSize(alg))
	n, err := c.HashCompute(alg, b, digest)
	if err != nil {
		fmt.Fprintf(errOut, "hash: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(out, hex.EncodeToString(digest[:n]))
	return 0
}

func cmdRandom(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("random", flag.ContinueOnError)
	fs.SetOutput(errOut)
	n := fs.Int("n", 32, "Number of random bytes")
	remote := fs.String("remote", "", "Daemon address (empty = in-process)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *n < 0 {
		fmt.Fprintln(errOut, "invalid --n")
		return 2
	}
	c, closeFn, err := newClient(*remote)
	if err != nil {
		fmt.Fprintf(errOut, "dial: %v\n", err)
		return 1
	}
	defer closeFn()

	buf := make([]byte, *n)
	if err := c.GenerateRandom(buf); err != nil {
		fmt.Fprintf(errOut, "random: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(out, hex.EncodeToString(buf))
	return 0
}

// importAEADKey places a caller-supplied key into the service's volatile
// store with the usage bits the operation needs.
func importAEADKey(c *client.Client, algName, keyHex string) (wire.KeyID, wire.Algorithm, error) {
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid --key-hex: %v", err)
	}
	var alg wire.Algorithm
	var kt wire.KeyType
	switch algName {
	case "", "aes-gcm":
		alg, kt = softserv.AlgAESGCM, softserv.KeyTypeAES
	case "chacha20-poly1305":
		alg, kt = softserv.AlgChaCha20Poly1305, softserv.KeyTypeChaCha20
	default:
		return 0, 0, fmt.Errorf("unknown --alg: %s", algName)
	}
	attrs := wire.KeyAttributes{
		Type:  kt,
		Bits:  uint32(len(key)) * 8,
		Usage: wire.UsageEncrypt | wire.UsageDecrypt,
		Alg:   alg,
	}
	id, err := c.ImportKey(attrs, key)
	if err != nil {
		return 0, 0, fmt.Errorf("import key: %v", err)
	}
	return id, alg, nil
}

func cmdSeal(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("seal", flag.ContinueOnError)
	fs.SetOutput(errOut)
	keyHex := fs.String("key-hex", "", "Symmetric key as hex")
	algName := fs.String("alg", "aes-gcm", "AEAD algorithm")
	remote := fs.String("remote", "", "Daemon address (empty = in-process)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *keyHex == "" {
		fmt.Fprintln(errOut, "missing --key-hex")
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: psacall seal --key-hex <hex> [--alg ...] [--remote addr] <file>")
		return 2
	}
	plaintext, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "read: %v\n", err)
		return 1
	}
	c, closeFn, err := newClient(*remote)
	if err != nil {
		fmt.Fprintf(errOut, "dial: %v\n", err)
		return 1
	}
	defer closeFn()

	id, alg, err := importAEADKey(c, *algName, *keyHex)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	nonce := make([]byte, 12)
	if err := c.GenerateRandom(nonce); err != nil {
		fmt.Fprintf(errOut, "nonce: %v\n", err)
		return 1
	}
	ciphertext := make([]byte, len(plaintext)+16)
	n, err := c.AEADEncrypt(id, alg, nonce, nil, plaintext, ciphertext)
	if err != nil {
		fmt.Fprintf(errOut, "seal: %v\n", err)
		return 1
	}
	_, _ = out.Write(nonce)
	_, _ = out.Write(ciphertext[:n])
	return 0
}

func cmdOpen(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("open", flag.ContinueOnError)
	fs.SetOutput(errOut)
	keyHex := fs.String("key-hex", "", "Symmetric key as hex")
	algName := fs.String("alg", "aes-gcm", "AEAD algorithm")
	remote := fs.String("remote", "", "Daemon address (empty = in-process)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *keyHex == "" {
		fmt.Fprintln(errOut, "missing --key-hex")
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: psacall open --key-hex <hex> [--alg ...] [--remote addr] <file>")
		return 2
	}
	sealed, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "read: %v\n", err)
		return 1
	}
	if len(sealed) < 12+16 {
		fmt.Fprintln(errOut, "input too short for nonce||ciphertext")
		return 1
	}
	c, closeFn, err := newClient(*remote)
	if err != nil {
		fmt.Fprintf(errOut, "dial: %v\n", err)
		return 1
	}
	defer closeFn()

	id, alg, err := importAEADKey(c, *algName, *keyHex)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	nonce, ciphertext := sealed[:12], sealed[12:]
	plaintext := make([]byte, len(ciphertext))
	n, err := c.AEADDecrypt(id, alg, nonce, nil, ciphertext, plaintext)
	if err != nil {
		fmt.Fprintf(errOut, "open: %v\n", err)
		return 1
	}
	_, _ = out.Write(plaintext[:n])
	return 0
}

// importSignKey imports an ed25519 seed for signing and verifying.
func importSignKey(c *client.Client, seedHex string) (wire.KeyID, error) {
	seed, err := hex.DecodeString(seedHex)
	if err != nil || len(seed) != 32 {
		return 0, fmt.Errorf("invalid --seed-hex: expected 32 bytes (64 hex chars)")
	}
	attrs := wire.KeyAttributes{
		Type:  softserv.KeyTypeEd25519KeyPair,
		Bits:  256,
		Usage: wire.UsageSignMessage | wire.UsageVerifyMessage,
		Alg:   softserv.AlgEd25519,
	}
	id, err := c.ImportKey(attrs, seed)
	if err != nil {
		return 0, fmt.Errorf("import key: %v", err)
	}
	return id, nil
}

func cmdSign(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("sign", flag.ContinueOnError)
	fs.SetOutput(errOut)
	seedHex := fs.String("seed-hex", "", "ed25519 seed as 64 hex chars")
	remote := fs.String("remote", "", "Daemon address (empty = in-process)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *seedHex == "" {
		fmt.Fprintln(errOut, "missing --seed-hex")
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: psacall sign --seed-hex <64hex> [--remote addr] <file>")
		return 2
	}
	msg, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "read: %v\n", err)
		return 1
	}
	c, closeFn, err := newClient(*remote)
	if err != nil {
		fmt.Fprintf(errOut, "dial: %v\n", err)
		return 1
	}
	defer closeFn()

	id, err := importSignKey(c, *seedHex)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	sig := make([]byte, 64)
	n, err := c.SignMessage(id, softserv.AlgEd25519, msg, sig)
	if err != nil {
		fmt.Fprintf(errOut, "sign: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(out, hex.EncodeToString(sig[:n]))
	return 0
}

func cmdVerify(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(errOut)
	seedHex := fs.String("seed-hex", "", "ed25519 seed as 64 hex chars")
	sigHex := fs.String("sig-hex", "", "Signature as hex")
	remote := fs.String("remote", "", "Daemon address (empty = in-process)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *seedHex == "" || *sigHex == "" {
		fmt.Fprintln(errOut, "missing --seed-hex or --sig-hex")
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: psacall verify --seed-hex <64hex> --sig-hex <hex> [--remote addr] <file>")
		return 2
	}
	sig, err := hex.DecodeString(*sigHex)
	if err != nil {
		fmt.Fprintf(errOut, "invalid --sig-hex: %v\n", err)
		return 2
	}
	msg, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "read: %v\n", err)
		return 1
	}
	c, closeFn, err := newClient(*remote)
	if err != nil {
		fmt.Fprintf(errOut, "dial: %v\n", err)
		return 1
	}
	defer closeFn()

	id, err := importSignKey(c, *seedHex)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	if err := c.VerifyMessage(id, softserv.AlgEd25519, msg, sig); err != nil {
		fmt.Fprintf(errOut, "verify: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(out, "OK")
	return 0
}

func cmdDerive(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("derive", flag.ContinueOnError)
	fs.SetOutput(errOut)
	secretHex := fs.String("secret-hex", "", "Input secret as hex")
	saltHex := fs.String("salt-hex", "", "Optional salt as hex")
	info := fs.String("info", "", "Optional context string")
	n := fs.Int("n", 32, "Number of output bytes")
	remote := fs.String("remote", "", "Daemon address (empty = in-process)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *secretHex == "" {
		fmt.Fprintln(errOut, "missing --secret-hex")
		return 2
	}
	if *n <= 0 {
		fmt.Fprintln(errOut, "invalid --n")
		return 2
	}
	secret, err := hex.DecodeString(*secretHex)
	if err != nil {
		fmt.Fprintf(errOut, "invalid --secret-hex: %v\n", err)
		return 2
	}
	var salt []byte
	if *saltHex != "" {
		salt, err = hex.DecodeString(*saltHex)
		if err != nil {
			fmt.Fprintf(errOut, "invalid --salt-hex: %v\n", err)
			return 2
		}
	}
	c, closeFn, err := newClient(*remote)
	if err != nil {
		fmt.Fprintf(errOut, "dial: %v\n", err)
		return 1
	}
	defer closeFn()

	var op client.KeyDerivationOperation
	if err := c.KeyDerivationSetup(&op, softserv.AlgHKDFSHA256); err != nil {
		fmt.Fprintf(errOut, "setup: %v\n", err)
		return 1
	}
	if salt != nil {
		if err := c.KeyDerivationInputBytes(&op, softserv.StepSalt, salt); err != nil {
			fmt.Fprintf(errOut, "salt: %v\n", err)
			return 1
		}
	}
	if err := c.KeyDerivationInputBytes(&op, softserv.StepSecret, secret); err != nil {
		fmt.Fprintf(errOut, "secret: %v\n", err)
		return 1
	}
	if *info != "" {
		if err := c.KeyDerivationInputBytes(&op, softserv.StepInfo, []byte(*info)); err != nil {
			fmt.Fprintf(errOut, "info: %v\n", err)
			return 1
		}
	}
	buf := make([]byte, *n)
	if err := c.KeyDerivationOutputBytes(&op, buf); err != nil {
		fmt.Fprintf(errOut, "output: %v\n", err)
		return 1
	}
	_ = c.KeyDerivationAbort(&op)
	_, _ = fmt.Fprintln(out, hex.EncodeToString(buf))
	return 0
}
