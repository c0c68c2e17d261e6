package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"strings"

	"google.golang.org/grpc"

	"xdao.co/keyring/aead"
	"xdao.co/keyring/keyset"
	"xdao.co/keyring/kms/grpckms"
	"xdao.co/keyring/model"
	"xdao.co/keyring/primitive"
)

// keyFlags collects repeated -key uri=keyset-file mappings.
type keyFlags map[string]string

func (k keyFlags) String() string { return fmt.Sprintf("%d keys", len(k)) }

func (k keyFlags) Set(v string) error {
	uri, path, ok := strings.Cut(v, "=")
	if !ok || uri == "" || path == "" {
		return fmt.Errorf("want <key-uri>=<keyset-file>, got %q", v)
	}
	if _, dup := k[uri]; dup {
		return fmt.Errorf("duplicate key uri %q", uri)
	}
	k[uri] = path
	return nil
}

func main() {
	fs := flag.NewFlagSet("xdao-kmsgrpcd", flag.ExitOnError)
	listen := fs.String("listen", "127.0.0.1:7788", "listen address")
	keys := keyFlags{}
	fs.Var(keys, "key", "key mapping <key-uri>=<keyset-file> (repeatable)")

	_ = fs.Parse(os.Args[1:])
	if len(keys) == 0 {
		fmt.Fprintln(os.Stderr, "at least one -key <key-uri>=<keyset-file> is required")
		os.Exit(2)
	}

	served := make(map[string]primitive.AEAD, len(keys))
	for uri, path := range keys {
		a, err := loadAEAD(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "key %s: %v\n", uri, err)
			os.Exit(2)
		}
		served[uri] = a
	}

	lis, err := net.Listen("tcp", *listen)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer lis.Close()

	s := grpc.NewServer()
	grpckms.RegisterKMSServer(s, &grpckms.Server{Keys: served})

	fmt.Fprintf(os.Stderr, "xdao-kmsgrpcd listening on %s (%d keys)\n", lis.Addr().String(), len(served))
	if err := s.Serve(lis); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadAEAD(path string) (primitive.AEAD, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var ks *model.Keyset
	if strings.HasPrefix(strings.TrimLeft(string(b), " \t\r\n"), "{") {
		ks, err = keyset.UnmarshalJSON(b)
	} else {
		ks, err = keyset.Unmarshal(b)
	}
	if err != nil {
		return nil, err
	}
	return aead.New(ks)
}
