// Command packr is the CLI boundary collaborator around the packr core: it
// converts between line-delimited JSON objects and PACKR wire bytes. It is
// not part of the core contract — it depends only on the packr package's
// public API and knows nothing about tokens, frames, or dictionaries.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/jaylikesbunda/packr"
)

func main() {
	decodeMode := flag.Bool("d", false, "decode wire bytes from stdin back to JSON on stdout")
	noCompress := flag.Bool("no-compress", false, "disable the outer LZ77/Huffman transform on encode")
	flag.Parse()

	if *decodeMode {
		if err := runDecode(os.Stdin, os.Stdout); err != nil {
			log.Fatal(err)
		}
		return
	}

	if err := runEncode(os.Stdin, os.Stdout, *noCompress); err != nil {
		log.Fatal(err)
	}
}

// runEncode reads one JSON object per line from r and writes a single wire
// artifact produced by EncodeStream to w. A single JSON object with no
// trailing newline is also accepted and encoded as a one-record stream.
func runEncode(r io.Reader, w io.Writer, noCompress bool) error {
	var opts []packr.EncoderOption
	if noCompress {
		opts = append(opts, packr.WithCompression(false))
	}
	enc := packr.NewEncoder(opts...)

	var records []packr.Value
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var raw any
		if err := json.Unmarshal(line, &raw); err != nil {
			return fmt.Errorf("packr: invalid JSON line: %w", err)
		}
		records = append(records, fromJSON(raw))
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	out, err := enc.EncodeStream(records)
	if err != nil {
		return err
	}

	_, err = w.Write(out)
	return err
}

// runDecode reads a single wire artifact from r in full and writes the
// decoded records to w as newline-delimited JSON.
func runDecode(r io.Reader, w io.Writer) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	dec := packr.NewDecoder()
	records, err := dec.DecodeStream(data)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	for _, rec := range records {
		if err := enc.Encode(toJSON(rec)); err != nil {
			return err
		}
	}
	return nil
}

// fromJSON converts a decoded JSON value (as produced by encoding/json's
// map[string]any/[]any/float64/string/bool/nil unmarshaling) into a
// packr.Value. Strings matching the MAC pattern become MAC values. JSON has
// no binary-blob kind, so bytes values are only reachable via the core API
// directly, not through this CLI.
func fromJSON(raw any) packr.Value {
	switch v := raw.(type) {
	case nil:
		return packr.Null()
	case bool:
		return packr.Bool(v)
	case float64:
		if v == float64(int64(v)) {
			return packr.Int(int64(v))
		}
		return packr.Float(v)
	case string:
		if mv, err := packr.MAC(v); err == nil {
			return mv
		}
		return packr.Str(v)
	case []any:
		elems := make([]packr.Value, len(v))
		for i, e := range v {
			elems[i] = fromJSON(e)
		}
		return packr.Array(elems...)
	case map[string]any:
		fields := make([]packr.Field, 0, len(v))
		for k, fv := range v {
			fields = append(fields, packr.F(k, fromJSON(fv)))
		}
		return packr.Obj(fields...)
	default:
		return packr.Null()
	}
}

// toJSON converts a decoded packr.Value back to a plain Go value suitable
// for encoding/json.
func toJSON(v packr.Value) any {
	switch v.Kind().String() {
	case "null":
		return nil
	case "bool":
		return v.Bool()
	case "int":
		return v.Int()
	case "float":
		return v.Float()
	case "string":
		return v.Str()
	case "mac":
		return v.Str()
	case "bytes":
		return v.Bytes()
	case "array":
		elems := v.Array()
		out := make([]any, len(elems))
		for i, e := range elems {
			out[i] = toJSON(e)
		}
		return out
	case "object":
		obj := v.Object()
		out := make(map[string]any, len(obj.Fields))
		for _, f := range obj.Fields {
			out[f.Name] = toJSON(f.Value)
		}
		return out
	default:
		return nil
	}
}
