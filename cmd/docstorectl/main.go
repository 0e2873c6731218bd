package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"

	"github.com/docopt/docopt-go"
)

const DocstoreCtlVersion = "0.1.0"

var Out *log.Logger
var Err *log.Logger

func init() {
	Out = log.New(os.Stdout, "", 0)
	Err = log.New(os.Stderr, "", log.Ldate|log.Ltime|log.Lshortfile)
}

func main() {
	usage := `Docstore control.

The default url is http://localhost:8080

Usage:
    docstorectl get [--url=<url>] [--token=<token>] <collection> <key>
    docstorectl put [--url=<url>] [--token=<token>] <collection> <key> <json>
    docstorectl delete [--url=<url>] [--token=<token>] <collection> <key>
    docstorectl list [--url=<url>] [--token=<token>] <collection>
        [--offset=<offset>] [--limit=<limit>]
    docstorectl query [--url=<url>] [--token=<token>] <collection>
        --predicate=<predicate> --value=<value>
    docstorectl bulk [--url=<url>] [--token=<token>] <collection> <file>
    docstorectl index [--url=<url>] [--token=<token>] <collection> <field>

Options:
    -h --help                Show this screen.
    --version                Show version.
    --url=<url>              Server base url.
    --token=<token>          Bearer token for authenticated servers.
    --offset=<offset>        Pagination offset.
    --limit=<limit>          Pagination limit.
    --predicate=<predicate>  Registered predicate name, e.g. by_genre.
    --value=<value>          Predicate value.`

	opts, err := docopt.ParseArgs(usage, os.Args[1:], DocstoreCtlVersion)
	if err != nil {
		panic(err)
	}

	if get_, _ := opts.Bool("get"); get_ {
		get(opts)
	} else if put_, _ := opts.Bool("put"); put_ {
		put(opts)
	} else if delete_, _ := opts.Bool("delete"); delete_ {
		deleteDoc(opts)
	} else if list_, _ := opts.Bool("list"); list_ {
		list(opts)
	} else if query_, _ := opts.Bool("query"); query_ {
		query(opts)
	} else if bulk_, _ := opts.Bool("bulk"); bulk_ {
		bulk(opts)
	} else if index_, _ := opts.Bool("index"); index_ {
		index(opts)
	}
}

func baseURL(opts docopt.Opts) string {
	if u, err := opts.String("--url"); err == nil && u != "" {
		return u
	}
	return "http://localhost:8080"
}

func request(opts docopt.Opts, method, path string, body io.Reader) {
	req, err := http.NewRequest(method, baseURL(opts)+path, body)
	if err != nil {
		Err.Fatalf("Building request failed: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token, err := opts.String("--token"); err == nil && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		Err.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		Err.Fatalf("Reading response failed: %v", err)
	}

	if resp.StatusCode >= 400 {
		Err.Fatalf("%s: %s", resp.Status, bytes.TrimSpace(data))
	}

	// Re-indent JSON responses for readability
	var pretty bytes.Buffer
	if json.Indent(&pretty, bytes.TrimSpace(data), "", "  ") == nil {
		Out.Println(pretty.String())
	} else {
		Out.Println(string(data))
	}
}

func get(opts docopt.Opts) {
	coll, _ := opts.String("<collection>")
	key, _ := opts.String("<key>")
	request(opts, "GET", fmt.Sprintf("/collections/%s/documents/%s", coll, key), nil)
}

func put(opts docopt.Opts) {
	coll, _ := opts.String("<collection>")
	key, _ := opts.String("<key>")
	doc, _ := opts.String("<json>")
	if !json.Valid([]byte(doc)) {
		Err.Fatalf("Invalid JSON document: %s", doc)
	}
	request(opts, "PUT", fmt.Sprintf("/collections/%s/documents/%s", coll, key), bytes.NewReader([]byte(doc)))
}

func deleteDoc(opts docopt.Opts) {
	coll, _ := opts.String("<collection>")
	key, _ := opts.String("<key>")
	request(opts, "DELETE", fmt.Sprintf("/collections/%s/documents/%s", coll, key), nil)
}

func list(opts docopt.Opts) {
	coll, _ := opts.String("<collection>")
	params := url.Values{}
	if offset, err := opts.String("--offset"); err == nil && offset != "" {
		params.Set("offset", offset)
	}
	if limit, err := opts.String("--limit"); err == nil && limit != "" {
		params.Set("limit", limit)
	}
	path := fmt.Sprintf("/collections/%s/documents", coll)
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	request(opts, "GET", path, nil)
}

func query(opts docopt.Opts) {
	coll, _ := opts.String("<collection>")
	predicate, _ := opts.String("--predicate")
	value, _ := opts.String("--value")
	params := url.Values{}
	params.Set("predicate", predicate)
	params.Set("value", value)
	request(opts, "GET", fmt.Sprintf("/collections/%s/query?%s", coll, params.Encode()), nil)
}

func bulk(opts docopt.Opts) {
	coll, _ := opts.String("<collection>")
	file, _ := opts.String("<file>")
	data, err := os.ReadFile(file)
	if err != nil {
		Err.Fatalf("Reading batch file failed: %v", err)
	}
	if !json.Valid(data) {
		Err.Fatalf("Batch file %s is not valid JSON", file)
	}
	request(opts, "POST", fmt.Sprintf("/collections/%s/bulk", coll), bytes.NewReader(data))
}

func index(opts docopt.Opts) {
	coll, _ := opts.String("<collection>")
	field, _ := opts.String("<field>")
	request(opts, "POST", fmt.Sprintf("/collections/%s/indexes/%s", coll, field), nil)
}
