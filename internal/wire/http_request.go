package wire

import (
	"bufio"
	"bytes"
	"net/url"
	"strconv"
	"strings"

	"github.com/arjunvel/tollgate/internal/proxyerr"
)

// HTTPRequest is the parsed form of a proxy-bound HTTP/1.x request line plus
// headers. Raw holds the exact header block read from the client, including
// the terminating CRLF CRLF, for verbatim forwarding in non-CONNECT modes.
type HTTPRequest struct {
	Method  string
	Version string
	Dest    Destination
	Raw     []byte
}

// ParseHTTPRequest reads CRLF-terminated lines from r until the blank line
// that ends the header block, and derives the request's destination. The
// version is validated against HTTP/1.0 and HTTP/1.1 only; neither a leading
// version peek nor any extra byte beyond what was actually read is ever
// captured in Raw.
func ParseHTTPRequest(r *bufio.Reader) (*HTTPRequest, error) {
	var raw bytes.Buffer

	firstLine, err := readCRLFLine(r, &raw)
	if err != nil {
		return nil, proxyerr.New(proxyerr.InvalidRequest, err)
	}

	fields := strings.Fields(firstLine)
	if len(fields) != 3 {
		return nil, proxyerr.New(proxyerr.InvalidRequest, nil)
	}
	method, path, version := fields[0], fields[1], fields[2]

	if version != "HTTP/1.0" && version != "HTTP/1.1" {
		return nil, proxyerr.New(proxyerr.UnsupportedVersion, nil)
	}

	for {
		line, err := readCRLFLine(r, &raw)
		if err != nil {
			return nil, proxyerr.New(proxyerr.InvalidRequest, err)
		}
		if line == "" {
			break
		}
	}

	dest, err := deriveDestination(method, path)
	if err != nil {
		return nil, err
	}

	return &HTTPRequest{
		Method:  method,
		Version: version,
		Dest:    dest,
		Raw:     raw.Bytes(),
	}, nil
}

// readCRLFLine reads one line up to and including "\r\n" (or plain "\n"),
// appends the exact bytes read to raw, and returns the line with its
// terminator stripped.
func readCRLFLine(r *bufio.Reader, raw *bytes.Buffer) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return "", err
	}
	raw.WriteString(line)
	return strings.TrimRight(line, "\r\n"), nil
}

func deriveDestination(method, path string) (Destination, error) {
	var rawURL string
	if strings.EqualFold(method, "CONNECT") {
		rawURL = "http://" + path
	} else {
		rawURL = path
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return Destination{}, proxyerr.New(proxyerr.InvalidRequest, err)
	}

	host := u.Hostname()
	if host == "" {
		return Destination{}, proxyerr.New(proxyerr.InvalidRequest, nil)
	}

	port := 80
	if p := u.Port(); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Destination{}, proxyerr.New(proxyerr.InvalidRequest, err)
		}
		port = n
	}

	return Destination{Host: ParseHost(host), Port: uint16(port)}, nil
}
