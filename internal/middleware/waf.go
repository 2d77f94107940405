package middleware

import (
	"io"
	"net"
	"net/http"
	"strconv"

	coraza "github.com/corazawaf/coraza/v3"
	"github.com/corazawaf/coraza/v3/types"

	"yelpcamp/internal/telemetry"
)

// WAF wraps coraza to reject malicious requests when configured.
type WAF struct {
	engine coraza.WAF
	log    telemetry.Logger
	// OnBlock renders a blocked request. Defaults to a plain error with the rule's status.
	OnBlock func(w http.ResponseWriter, r *http.Request, status int)
}

// NewWAF builds a WAF from directives, e.g. "SecRuleEngine On" plus CRS includes.
func NewWAF(directives string, log telemetry.Logger) (*WAF, error) {
	w, err := coraza.NewWAF(coraza.NewWAFConfig().WithDirectives(directives))
	if err != nil {
		return nil, err
	}
	return &WAF{engine: w, log: log}, nil
}

// Middleware evaluates request headers and, when accessible, the body before next runs.
func (w *WAF) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		tx := w.engine.NewTransaction()
		defer func() {
			tx.ProcessLogging()
			_ = tx.Close()
		}()
		if tx.IsRuleEngineOff() {
			next.ServeHTTP(rw, r)
			return
		}

		client, cport := splitHostPort(r.RemoteAddr)
		tx.ProcessConnection(client, cport, "", 0)
		tx.ProcessURI(r.URL.String(), r.Method, r.Proto)
		for k, vals := range r.Header {
			for _, v := range vals {
				tx.AddRequestHeader(k, v)
			}
		}
		if r.Host != "" {
			tx.AddRequestHeader("Host", r.Host)
		}
		if it := tx.ProcessRequestHeaders(); it != nil {
			w.block(rw, r, it)
			return
		}

		if tx.IsRequestBodyAccessible() && r.Body != nil && r.Body != http.NoBody {
			if it, _, err := tx.ReadRequestBodyFrom(r.Body); err != nil {
				http.Error(rw, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
				return
			} else if it != nil {
				w.block(rw, r, it)
				return
			}
			it, err := tx.ProcessRequestBody()
			if err != nil {
				http.Error(rw, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
				return
			}
			if it != nil {
				w.block(rw, r, it)
				return
			}
			body, err := tx.RequestBodyReader()
			if err != nil {
				http.Error(rw, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			r.Body = io.NopCloser(body)
		}
		next.ServeHTTP(rw, r)
	})
}

func (w *WAF) block(rw http.ResponseWriter, r *http.Request, it *types.Interruption) {
	status := it.Status
	if status == 0 {
		status = http.StatusForbidden
	}
	w.log.Warn("waf blocked request",
		"rule", it.RuleID,
		"action", it.Action,
		"path", r.URL.Path,
		"request_id", GetRequestID(r.Context()),
	)
	if w.OnBlock != nil {
		w.OnBlock(rw, r, status)
		return
	}
	http.Error(rw, "request blocked", status)
}

func splitHostPort(addr string) (string, int) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr, 0
	}
	p, _ := strconv.Atoi(port)
	return host, p
}
