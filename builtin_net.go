// builtin_net.go: TCP and HTTP client builtins.
package lattice

import (
	"bufio"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

const httpTimeout = 30 * time.Second

// tcpConn is the payload behind a "tcp" handle. Reads are buffered so
// read_line can stop at newlines without losing bytes.
type tcpConn struct {
	c  net.Conn
	rb *bufio.Reader
	wb *bufio.Writer
}

func newTCPHandle(c net.Conn) Value {
	return HandleVal("tcp", &tcpConn{c: c, rb: bufio.NewReader(c), wb: bufio.NewWriter(c)})
}

func doHTTP(req *http.Request) Value {
	client := &http.Client{Timeout: httpTimeout}
	resp, err := client.Do(req)
	if err != nil {
		fail("http: " + err.Error())
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		fail("http: " + err.Error())
	}

	hdrs := make(map[string]Value, len(resp.Header))
	for k, vs := range resp.Header {
		hdrs[k] = Str(strings.Join(vs, ", "))
	}
	return MapFrom(map[string]Value{
		"status":  Int(int64(resp.StatusCode)),
		"headers": MapFrom(hdrs),
		"body":    Str(string(b)),
	})
}

// netHandleMethod serves method calls on "tcp" and "listener" handles.
func netHandleMethod(h *Handle, name string, args []Value) Value {
	switch t := h.Data.(type) {
	case *tcpConn:
		switch name {
		case "read_line":
			wantArgs(args, 0, "read_line")
			line, err := t.rb.ReadString('\n')
			if err != nil && line == "" {
				if err == io.EOF {
					return Nil
				}
				fail("read_line: " + err.Error())
			}
			return Str(strings.TrimRight(line, "\r\n"))
		case "read":
			wantArgs(args, 1, "read")
			size := wantInt(args[0], "read size")
			if size <= 0 {
				failUsage("read size must be positive")
			}
			buf := make([]byte, size)
			n, err := t.rb.Read(buf)
			if n == 0 && err != nil {
				if err == io.EOF {
					return Nil
				}
				fail("read: " + err.Error())
			}
			return Str(string(buf[:n]))
		case "write":
			wantArgs(args, 1, "write")
			if _, err := t.wb.WriteString(wantStr(args[0], "write data")); err != nil {
				fail("write: " + err.Error())
			}
			return Nil
		case "flush":
			wantArgs(args, 0, "flush")
			if err := t.wb.Flush(); err != nil {
				fail("flush: " + err.Error())
			}
			return Nil
		case "close":
			wantArgs(args, 0, "close")
			t.wb.Flush()
			if err := t.c.Close(); err != nil {
				fail("close: " + err.Error())
			}
			return Nil
		}
		failUsage("unknown method '" + name + "' on tcp handle")
	case net.Listener:
		switch name {
		case "accept":
			wantArgs(args, 0, "accept")
			conn, err := t.Accept()
			if err != nil {
				fail("accept: " + err.Error())
			}
			return newTCPHandle(conn)
		case "address":
			wantArgs(args, 0, "address")
			return Str(t.Addr().String())
		case "close":
			wantArgs(args, 0, "close")
			if err := t.Close(); err != nil {
				fail("close: " + err.Error())
			}
			return Nil
		}
		failUsage("unknown method '" + name + "' on listener handle")
	}
	failUsage("unknown method '" + name + "' on net handle")
	return Nil
}

func registerNetBuiltins(ip *Interpreter) {
	ip.defineBuiltin("tcp_connect", func(_ *Interpreter, args []Value) Value {
		wantArgs(args, 1, "tcp_connect")
		conn, err := net.Dial("tcp", wantStr(args[0], "tcp_connect address"))
		if err != nil {
			fail("tcp_connect: " + err.Error())
		}
		return newTCPHandle(conn)
	})

	ip.defineBuiltin("tcp_listen", func(_ *Interpreter, args []Value) Value {
		wantArgs(args, 1, "tcp_listen")
		ln, err := net.Listen("tcp", wantStr(args[0], "tcp_listen address"))
		if err != nil {
			fail("tcp_listen: " + err.Error())
		}
		return HandleVal("listener", ln)
	})

	ip.defineBuiltin("http_get", func(_ *Interpreter, args []Value) Value {
		wantArgs(args, 1, "http_get")
		req, err := http.NewRequest("GET", wantStr(args[0], "http_get url"), nil)
		if err != nil {
			fail("http_get: " + err.Error())
		}
		return doHTTP(req)
	})

	ip.defineBuiltin("http_post", func(_ *Interpreter, args []Value) Value {
		if len(args) != 2 && len(args) != 3 {
			failUsage("http_post expects (url, body) or (url, body, content_type)")
		}
		url := wantStr(args[0], "http_post url")
		body := wantStr(args[1], "http_post body")
		ctype := "application/json"
		if len(args) == 3 {
			ctype = wantStr(args[2], "http_post content_type")
		}
		req, err := http.NewRequest("POST", url, strings.NewReader(body))
		if err != nil {
			fail("http_post: " + err.Error())
		}
		req.Header.Set("Content-Type", ctype)
		return doHTTP(req)
	})

	// General request form: http_request({url, method?, headers?, body?}).
	ip.defineBuiltin("http_request", func(_ *Interpreter, args []Value) Value {
		wantArgs(args, 1, "http_request")
		if args[0].Tag != VTMap {
			failUsage("http_request expects a request map")
		}
		mo := args[0].Data.(*MapObject)

		uv, ok := mo.Get("url")
		if !ok || uv.Tag != VTStr {
			failUsage("http_request url must be a string")
		}

		method := "GET"
		if mv, ok := mo.Get("method"); ok {
			method = strings.ToUpper(wantStr(mv, "http_request method"))
		}

		var bodyReader io.Reader
		if bv, ok := mo.Get("body"); ok {
			bodyReader = strings.NewReader(wantStr(bv, "http_request body"))
		}

		req, err := http.NewRequest(method, uv.Data.(string), bodyReader)
		if err != nil {
			fail("http_request: " + err.Error())
		}

		if hv, ok := mo.Get("headers"); ok {
			if hv.Tag != VTMap {
				failUsage("http_request headers must be a map")
			}
			hm := hv.Data.(*MapObject)
			for _, k := range hm.Keys {
				v, _ := hm.Get(k)
				req.Header.Set(k, wantStr(v, "http_request header value"))
			}
		}
		return doHTTP(req)
	})
}
