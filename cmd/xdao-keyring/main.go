package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ipfs/go-cid"

	"xdao.co/keyring/aead"
	"xdao.co/keyring/keyset"
	"xdao.co/keyring/mac"
	"xdao.co/keyring/model"
	"xdao.co/keyring/primitive"
	"xdao.co/keyring/signature"
	"xdao.co/keyring/store"
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
	case "keyset":
		return cmdKeyset(args[1:], out, errOut)
	case "encrypt":
		return cmdEncrypt(args[1:], out, errOut)
	case "decrypt":
		return cmdDecrypt(args[1:], out, errOut)
	case "mac":
		return cmdMAC(args[1:], out, errOut)
	case "sign":
		return cmdSign(args[1:], out, errOut)
	case "verify":
		return cmdVerify(args[1:], out, errOut)
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
	fmt.Fprintln(w, "xdao-keyring: keyset management and crypto operations")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  xdao-keyring keyset create --out <file> --type <type> [--prefix tink|raw|legacy|crunchy] [--json] [--key-uri <uri>]")
	fmt.Fprintln(w, "  xdao-keyring keyset rotate --keyset <file> --type <type> [--prefix ...] [--key-uri <uri>]")
	fmt.Fprintln(w, "  xdao-keyring keyset promote --keyset <file> --id <keyID>")
	fmt.Fprintln(w, "  xdao-keyring keyset enable|disable|destroy --keyset <file> --id <keyID>")
	fmt.Fprintln(w, "  xdao-keyring keyset info --keyset <file>")
	fmt.Fprintln(w, "  xdao-keyring keyset public --keyset <file> --out <file> [--json]")
	fmt.Fprintln(w, "  xdao-keyring keyset seal --keyset <file> --master <file> [--backend <name>] [backend flags]")
	fmt.Fprintln(w, "  xdao-keyring keyset unseal --id <archiveID> --master <file> --out <file> [--json] [--backend <name>] [backend flags]")
	fmt.Fprintln(w, "  xdao-keyring encrypt --keyset <file> [--ad <string>] < plaintext > ciphertext")
	fmt.Fprintln(w, "  xdao-keyring decrypt --keyset <file> [--ad <string>] < ciphertext > plaintext")
	fmt.Fprintln(w, "  xdao-keyring mac tag --keyset <file> < data          # prints hex tag")
	fmt.Fprintln(w, "  xdao-keyring mac check --keyset <file> --tag <hex> < data")
	fmt.Fprintln(w, "  xdao-keyring sign --keyset <file> < data             # prints hex signature")
	fmt.Fprintln(w, "  xdao-keyring verify --keyset <file> --sig <hex> < data")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Key types:")
	fmt.Fprintln(w, "  aes-gcm, xchacha20, remote (AEAD)")
	fmt.Fprintln(w, "  hmac (MAC)")
	fmt.Fprintln(w, "  ed25519, ecdsa-p256, dilithium3 (signature)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - keyset files are CLEARTEXT: they contain key material")
	fmt.Fprintf(w, "  - archive backends: %s\n", strings.Join(store.Names(), ", "))
	fmt.Fprintln(w, "  - binary and JSON keyset files are detected on read; --json selects the output encoding")
	fmt.Fprintln(w, "  - verify expects a public keyset (see: keyset public)")
}

// keyTypes maps CLI names to registered type ids and default formats.
var keyTypes = map[string]string{
	"aes-gcm":    aead.AESGCMTypeID,
	"xchacha20":  aead.XChaCha20Poly1305TypeID,
	"remote":     aead.RemoteTypeID,
	"hmac":       mac.HMACTypeID,
	"ed25519":    signature.Ed25519TypeID,
	"ecdsa-p256": signature.ECDSAP256TypeID,
	"dilithium3": signature.Dilithium3TypeID,
}

func keyFormat(name, keyURI string) ([]byte, error) {
	if name == "remote" {
		if keyURI == "" {
			return nil, fmt.Errorf("--key-uri is required for type remote")
		}
		return aead.RemoteKeyFormat(keyURI), nil
	}
	if keyURI != "" {
		return nil, fmt.Errorf("--key-uri only applies to type remote")
	}
	return nil, nil
}

func prefixKind(name string) (model.PrefixKind, error) {
	switch name {
	case "tink":
		return model.PrefixTink, nil
	case "raw":
		return model.PrefixRaw, nil
	case "legacy":
		return model.PrefixLegacy, nil
	case "crunchy":
		return model.PrefixCrunchy, nil
	default:
		return 0, fmt.Errorf("unknown prefix kind %q", name)
	}
}

// readKeysetFile loads a keyset and reports whether it was JSON, so
// mutating commands can write it back in the encoding they found.
func readKeysetFile(path string) (*model.Keyset, bool, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, false, err
	}
	trimmed := strings.TrimLeft(string(b), " \t\r\n")
	if strings.HasPrefix(trimmed, "{") {
		ks, err := keyset.UnmarshalJSON(b)
		return ks, true, err
	}
	ks, err := keyset.Unmarshal(b)
	return ks, false, err
}

func writeKeysetFile(path string, ks *model.Keyset, asJSON bool) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	var w keyset.Writer
	if asJSON {
		w = keyset.NewJSONWriter(f)
	} else {
		w = keyset.NewBinaryWriter(f)
	}
	if err := w.Write(ks); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func cmdKeyset(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: xdao-keyring keyset <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: create, rotate, promote, enable, disable, destroy, info, public, seal, unseal")
		return 2
	}
	switch args[0] {
	case "create":
		fs := flag.NewFlagSet("keyset create", flag.ContinueOnError)
		fs.SetOutput(errOut)
		outPath := fs.String("out", "", "output keyset file")
		typeName := fs.String("type", "aes-gcm", "key type")
		prefixName := fs.String("prefix", "tink", "output prefix kind")
		asJSON := fs.Bool("json", false, "write JSON instead of binary")
		keyURI := fs.String("key-uri", "", "remote key uri (type remote only)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if *outPath == "" {
			fmt.Fprintln(errOut, "--out is required")
			return 2
		}
		typeID, ok := keyTypes[*typeName]
		if !ok {
			fmt.Fprintf(errOut, "unknown key type %q\n", *typeName)
			return 2
		}
		kind, err := prefixKind(*prefixName)
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 2
		}
		format, err := keyFormat(*typeName, *keyURI)
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 2
		}
		m := keyset.NewManager()
		id, err := m.Rotate(typeID, format, kind)
		if err != nil {
			fmt.Fprintf(errOut, "create: %v\n", err)
			return 1
		}
		ks, err := m.Keyset()
		if err != nil {
			fmt.Fprintf(errOut, "create: %v\n", err)
			return 1
		}
		if err := writeKeysetFile(*outPath, ks, *asJSON); err != nil {
			fmt.Fprintf(errOut, "write keyset: %v\n", err)
			return 1
		}
		fmt.Fprintf(out, "created keyset with primary key %d\n", id)
		return 0

	case "rotate":
		fs := flag.NewFlagSet("keyset rotate", flag.ContinueOnError)
		fs.SetOutput(errOut)
		ksPath := fs.String("keyset", "", "keyset file")
		typeName := fs.String("type", "aes-gcm", "key type")
		prefixName := fs.String("prefix", "tink", "output prefix kind")
		keyURI := fs.String("key-uri", "", "remote key uri (type remote only)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if *ksPath == "" {
			fmt.Fprintln(errOut, "--keyset is required")
			return 2
		}
		typeID, ok := keyTypes[*typeName]
		if !ok {
			fmt.Fprintf(errOut, "unknown key type %q\n", *typeName)
			return 2
		}
		kind, err := prefixKind(*prefixName)
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 2
		}
		format, err := keyFormat(*typeName, *keyURI)
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 2
		}
		ks, wasJSON, err := readKeysetFile(*ksPath)
		if err != nil {
			fmt.Fprintf(errOut, "read keyset: %v\n", err)
			return 1
		}
		m, err := keyset.ManagerFor(ks)
		if err != nil {
			fmt.Fprintf(errOut, "rotate: %v\n", err)
			return 1
		}
		id, err := m.Rotate(typeID, format, kind)
		if err != nil {
			fmt.Fprintf(errOut, "rotate: %v\n", err)
			return 1
		}
		next, err := m.Keyset()
		if err != nil {
			fmt.Fprintf(errOut, "rotate: %v\n", err)
			return 1
		}
		if err := writeKeysetFile(*ksPath, next, wasJSON); err != nil {
			fmt.Fprintf(errOut, "write keyset: %v\n", err)
			return 1
		}
		fmt.Fprintf(out, "rotated; new primary key %d\n", id)
		return 0

	case "promote", "enable", "disable", "destroy":
		return cmdKeysetStatus(args[0], args[1:], out, errOut)

	case "seal":
		return cmdKeysetSeal(args[1:], out, errOut)

	case "unseal":
		return cmdKeysetUnseal(args[1:], out, errOut)

	case "info":
		fs := flag.NewFlagSet("keyset info", flag.ContinueOnError)
		fs.SetOutput(errOut)
		ksPath := fs.String("keyset", "", "keyset file")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if *ksPath == "" {
			fmt.Fprintln(errOut, "--keyset is required")
			return 2
		}
		ks, _, err := readKeysetFile(*ksPath)
		if err != nil {
			fmt.Fprintf(errOut, "read keyset: %v\n", err)
			return 1
		}
		fmt.Fprint(out, ks.Info().String())
		return 0

	case "public":
		fs := flag.NewFlagSet("keyset public", flag.ContinueOnError)
		fs.SetOutput(errOut)
		ksPath := fs.String("keyset", "", "private keyset file")
		outPath := fs.String("out", "", "output public keyset file")
		asJSON := fs.Bool("json", false, "write JSON instead of binary")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if *ksPath == "" || *outPath == "" {
			fmt.Fprintln(errOut, "--keyset and --out are required")
			return 2
		}
		ks, _, err := readKeysetFile(*ksPath)
		if err != nil {
			fmt.Fprintf(errOut, "read keyset: %v\n", err)
			return 1
		}
		pub, err := keyset.Public(ks)
		if err != nil {
			fmt.Fprintf(errOut, "public: %v\n", err)
			return 1
		}
		if err := writeKeysetFile(*outPath, pub, *asJSON); err != nil {
			fmt.Fprintf(errOut, "write keyset: %v\n", err)
			return 1
		}
		fmt.Fprintf(out, "wrote public keyset (%d keys)\n", len(pub.Entries))
		return 0

	default:
		fmt.Fprintf(errOut, "unknown keyset subcommand: %s\n", args[0])
		return 2
	}
}

// masterAEAD loads the master keyset and builds its AEAD.
func masterAEAD(path string) (primitive.AEAD, error) {
	ks, _, err := readKeysetFile(path)
	if err != nil {
		return nil, err
	}
	return aead.New(ks)
}

func cmdKeysetSeal(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("keyset seal", flag.ContinueOnError)
	fs.SetOutput(errOut)
	ksPath := fs.String("keyset", "", "keyset file to seal")
	masterPath := fs.String("master", "", "master keyset file (AEAD)")
	backend := fs.String("backend", "localfs", "archive backend")
	store.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *ksPath == "" || *masterPath == "" {
		fmt.Fprintln(errOut, "--keyset and --master are required")
		return 2
	}
	ks, _, err := readKeysetFile(*ksPath)
	if err != nil {
		fmt.Fprintf(errOut, "read keyset: %v\n", err)
		return 1
	}
	master, err := masterAEAD(*masterPath)
	if err != nil {
		fmt.Fprintf(errOut, "read master keyset: %v\n", err)
		return 1
	}
	archive, err := store.Open(*backend)
	if err != nil {
		fmt.Fprintf(errOut, "seal: %v\n", err)
		return 1
	}
	es := &store.EncryptedStore{Archive: archive, Master: master}
	id, err := es.Save(ks)
	if err != nil {
		fmt.Fprintf(errOut, "seal: %v\n", err)
		return 1
	}
	fmt.Fprintln(out, id.String())
	return 0
}

func cmdKeysetUnseal(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("keyset unseal", flag.ContinueOnError)
	fs.SetOutput(errOut)
	idStr := fs.String("id", "", "archive id (from keyset seal)")
	masterPath := fs.String("master", "", "master keyset file (AEAD)")
	outPath := fs.String("out", "", "output keyset file")
	asJSON := fs.Bool("json", false, "write JSON instead of binary")
	backend := fs.String("backend", "localfs", "archive backend")
	store.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *idStr == "" || *masterPath == "" || *outPath == "" {
		fmt.Fprintln(errOut, "--id, --master, and --out are required")
		return 2
	}
	id, err := cid.Decode(*idStr)
	if err != nil {
		fmt.Fprintf(errOut, "bad --id: %v\n", err)
		return 2
	}
	master, err := masterAEAD(*masterPath)
	if err != nil {
		fmt.Fprintf(errOut, "read master keyset: %v\n", err)
		return 1
	}
	archive, err := store.Open(*backend)
	if err != nil {
		fmt.Fprintf(errOut, "unseal: %v\n", err)
		return 1
	}
	es := &store.EncryptedStore{Archive: archive, Master: master}
	ks, err := es.Load(id)
	if err != nil {
		fmt.Fprintf(errOut, "unseal: %v\n", err)
		return 1
	}
	if err := writeKeysetFile(*outPath, ks, *asJSON); err != nil {
		fmt.Fprintf(errOut, "write keyset: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "wrote keyset (%d keys)\n", len(ks.Entries))
	return 0
}

func cmdKeysetStatus(op string, args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("keyset "+op, flag.ContinueOnError)
	fs.SetOutput(errOut)
	ksPath := fs.String("keyset", "", "keyset file")
	id := fs.Uint("id", 0, "key id")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *ksPath == "" || *id == 0 {
		fmt.Fprintln(errOut, "--keyset and --id are required")
		return 2
	}
	ks, wasJSON, err := readKeysetFile(*ksPath)
	if err != nil {
		fmt.Fprintf(errOut, "read keyset: %v\n", err)
		return 1
	}
	m, err := keyset.ManagerFor(ks)
	if err != nil {
		fmt.Fprintf(errOut, "%s: %v\n", op, err)
		return 1
	}
	keyID := uint32(*id)
	switch op {
	case "promote":
		err = m.SetPrimary(keyID)
	case "enable":
		err = m.Enable(keyID)
	case "disable":
		err = m.Disable(keyID)
	case "destroy":
		err = m.Destroy(keyID)
	}
	if err != nil {
		fmt.Fprintf(errOut, "%s: %v\n", op, err)
		return 1
	}
	next, err := m.Keyset()
	if err != nil {
		fmt.Fprintf(errOut, "%s: %v\n", op, err)
		return 1
	}
	if err := writeKeysetFile(*ksPath, next, wasJSON); err != nil {
		fmt.Fprintf(errOut, "write keyset: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "%s key %d: ok\n", op, keyID)
	return 0
}

func cmdEncrypt(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("encrypt", flag.ContinueOnError)
	fs.SetOutput(errOut)
	ksPath := fs.String("keyset", "", "keyset file")
	ad := fs.String("ad", "", "associated data")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *ksPath == "" {
		fmt.Fprintln(errOut, "--keyset is required")
		return 2
	}
	ks, _, err := readKeysetFile(*ksPath)
	if err != nil {
		fmt.Fprintf(errOut, "read keyset: %v\n", err)
		return 1
	}
	a, err := aead.New(ks)
	if err != nil {
		fmt.Fprintf(errOut, "encrypt: %v\n", err)
		return 1
	}
	pt, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintf(errOut, "read stdin: %v\n", err)
		return 1
	}
	ct, err := a.Seal(pt, []byte(*ad))
	if err != nil {
		fmt.Fprintf(errOut, "encrypt: %v\n", err)
		return 1
	}
	if _, err := out.Write(ct); err != nil {
		fmt.Fprintf(errOut, "write ciphertext: %v\n", err)
		return 1
	}
	return 0
}

func cmdDecrypt(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("decrypt", flag.ContinueOnError)
	fs.SetOutput(errOut)
	ksPath := fs.String("keyset", "", "keyset file")
	ad := fs.String("ad", "", "associated data")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *ksPath == "" {
		fmt.Fprintln(errOut, "--keyset is required")
		return 2
	}
	ks, _, err := readKeysetFile(*ksPath)
	if err != nil {
		fmt.Fprintf(errOut, "read keyset: %v\n", err)
		return 1
	}
	a, err := aead.New(ks)
	if err != nil {
		fmt.Fprintf(errOut, "decrypt: %v\n", err)
		return 1
	}
	ct, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintf(errOut, "read stdin: %v\n", err)
		return 1
	}
	pt, err := a.Open(ct, []byte(*ad))
	if err != nil {
		fmt.Fprintf(errOut, "decrypt: %v\n", err)
		return 1
	}
	if _, err := out.Write(pt); err != nil {
		fmt.Fprintf(errOut, "write plaintext: %v\n", err)
		return 1
	}
	return 0
}

func cmdMAC(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: xdao-keyring mac tag|check ...")
		return 2
	}
	op := args[0]
	if op != "tag" && op != "check" {
		fmt.Fprintf(errOut, "unknown mac subcommand: %s\n", op)
		return 2
	}
	fs := flag.NewFlagSet("mac "+op, flag.ContinueOnError)
	fs.SetOutput(errOut)
	ksPath := fs.String("keyset", "", "keyset file")
	tagHex := fs.String("tag", "", "hex tag (check only)")
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}
	if *ksPath == "" {
		fmt.Fprintln(errOut, "--keyset is required")
		return 2
	}
	ks, _, err := readKeysetFile(*ksPath)
	if err != nil {
		fmt.Fprintf(errOut, "read keyset: %v\n", err)
		return 1
	}
	m, err := mac.New(ks)
	if err != nil {
		fmt.Fprintf(errOut, "mac: %v\n", err)
		return 1
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintf(errOut, "read stdin: %v\n", err)
		return 1
	}
	if op == "tag" {
		tag, err := m.Tag(data)
		if err != nil {
			fmt.Fprintf(errOut, "mac: %v\n", err)
			return 1
		}
		fmt.Fprintln(out, hex.EncodeToString(tag))
		return 0
	}
	tag, err := hex.DecodeString(*tagHex)
	if err != nil {
		fmt.Fprintf(errOut, "bad --tag: %v\n", err)
		return 2
	}
	if err := m.Check(tag, data); err != nil {
		fmt.Fprintf(errOut, "mac check: %v\n", err)
		return 1
	}
	fmt.Fprintln(out, "ok")
	return 0
}

func cmdSign(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("sign", flag.ContinueOnError)
	fs.SetOutput(errOut)
	ksPath := fs.String("keyset", "", "private keyset file")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *ksPath == "" {
		fmt.Fprintln(errOut, "--keyset is required")
		return 2
	}
	ks, _, err := readKeysetFile(*ksPath)
	if err != nil {
		fmt.Fprintf(errOut, "read keyset: %v\n", err)
		return 1
	}
	s, err := signature.NewSigner(ks)
	if err != nil {
		fmt.Fprintf(errOut, "sign: %v\n", err)
		return 1
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintf(errOut, "read stdin: %v\n", err)
		return 1
	}
	sig, err := s.Sign(data)
	if err != nil {
		fmt.Fprintf(errOut, "sign: %v\n", err)
		return 1
	}
	fmt.Fprintln(out, hex.EncodeToString(sig))
	return 0
}

func cmdVerify(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(errOut)
	ksPath := fs.String("keyset", "", "public keyset file")
	sigHex := fs.String("sig", "", "hex signature")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *ksPath == "" || *sigHex == "" {
		fmt.Fprintln(errOut, "--keyset and --sig are required")
		return 2
	}
	sig, err := hex.DecodeString(*sigHex)
	if err != nil {
		fmt.Fprintf(errOut, "bad --sig: %v\n", err)
		return 2
	}
	ks, _, err := readKeysetFile(*ksPath)
	if err != nil {
		fmt.Fprintf(errOut, "read keyset: %v\n", err)
		return 1
	}
	v, err := signature.NewVerifier(ks)
	if err != nil {
		fmt.Fprintf(errOut, "verify: %v\n", err)
		return 1
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintf(errOut, "read stdin: %v\n", err)
		return 1
	}
	if err := v.Verify(sig, data); err != nil {
		fmt.Fprintf(errOut, "verify: %v\n", err)
		return 1
	}
	fmt.Fprintln(out, "ok")
	return 0
}
