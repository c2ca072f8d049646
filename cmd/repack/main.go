// Command repack decodes an asset container and re-encodes it in
// canonical form. Models and animations repack in place format-wise;
// scene input must be an uncompressed payload (the engine's blast
// routine or an equivalent tool expands the original container), and the
// output is a complete container with a freshly imploded payload.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"arx-asset-codec/internal/codecerr"
	"arx-asset-codec/internal/ftl"
	"arx-asset-codec/internal/fts"
	"arx-asset-codec/internal/scan"
	"arx-asset-codec/internal/tea"
)

func main() {
	outPath := flag.String("out", "", "Output path (default: <input>.repacked.<ext>)")
	verify := flag.Bool("verify", false, "Decode the re-encoded output and check the encoding is stable")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [-out path] [-verify] file\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	input := flag.Arg(0)

	kind, ok := scan.KindOf(input)
	if !ok {
		fmt.Fprintf(os.Stderr, "%s: unrecognized extension\n", input)
		os.Exit(1)
	}

	raw, err := os.ReadFile(input)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	out, warns, err := repack(kind, raw, *verify)
	for _, w := range warns {
		fmt.Printf("warning: %v\n", w)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", input, err)
		os.Exit(1)
	}

	dst := *outPath
	if dst == "" {
		ext := filepath.Ext(input)
		dst = strings.TrimSuffix(input, ext) + ".repacked" + ext
	}
	if err := os.WriteFile(dst, out, 0644); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("%s: %d bytes in, %d bytes out → %s\n", input, len(raw), len(out), dst)
}

func repack(kind scan.Kind, raw []byte, verify bool) ([]byte, []codecerr.Warning, error) {
	switch kind {
	case scan.KindModel:
		m, warns, err := ftl.Decode(raw)
		if err != nil {
			return nil, nil, err
		}
		out, err := ftl.Encode(m)
		if err != nil {
			return nil, warns, err
		}
		if verify {
			if err := verifyModel(out); err != nil {
				return nil, warns, err
			}
		}
		return out, warns, nil

	case scan.KindAnimation:
		a, warns, err := tea.Decode(raw)
		if err != nil {
			return nil, nil, err
		}
		out, err := tea.Encode(a)
		if err != nil {
			return nil, warns, err
		}
		if verify {
			if err := verifyAnimation(out); err != nil {
				return nil, warns, err
			}
		}
		return out, warns, nil

	case scan.KindScene:
		s, warns, err := fts.Decode(raw)
		if err != nil {
			return nil, nil, err
		}
		if verify {
			payload, _, err := fts.Encode(s)
			if err != nil {
				return nil, warns, err
			}
			if err := verifyScene(payload); err != nil {
				return nil, warns, err
			}
		}
		out, more, err := fts.EncodeContainer(s)
		return out, append(warns, more...), err
	}
	return nil, nil, fmt.Errorf("unsupported container kind")
}

// The verify helpers decode the freshly encoded bytes and encode once
// more: the second encoding must reproduce the first byte for byte.

func verifyModel(enc []byte) error {
	m, _, err := ftl.Decode(enc)
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	again, err := ftl.Encode(m)
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	if !bytes.Equal(enc, again) {
		return fmt.Errorf("verify: re-encoding is not stable")
	}
	return nil
}

func verifyAnimation(enc []byte) error {
	a, _, err := tea.Decode(enc)
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	again, err := tea.Encode(a)
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	if !bytes.Equal(enc, again) {
		return fmt.Errorf("verify: re-encoding is not stable")
	}
	return nil
}

func verifyScene(payload []byte) error {
	s, _, err := fts.Decode(payload)
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	again, _, err := fts.Encode(s)
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	if !bytes.Equal(payload, again) {
		return fmt.Errorf("verify: re-encoding is not stable")
	}
	return nil
}
