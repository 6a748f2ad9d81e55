package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"mahattati/internal/reqctx"

	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// TrustedProxies: сети прокси, чьим заголовкам X-Forwarded-For и X-Real-IP можно верить.
// Пустой список означает, что клиент определяется только по RemoteAddr.
type TrustedProxies []*net.IPNet

// ParseTrustedProxies принимает CIDR или одиночные адреса.
func ParseTrustedProxies(list []string) (TrustedProxies, error) {
	var out TrustedProxies
	for _, raw := range list {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if !strings.Contains(raw, "/") {
			ip := net.ParseIP(raw)
			if ip == nil {
				return nil, fmt.Errorf("invalid trusted proxy %q", raw)
			}
			bits := 128
			if ip.To4() != nil {
				ip, bits = ip.To4(), 32
			}
			out = append(out, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, n, err := net.ParseCIDR(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", raw, err)
		}
		out = append(out, n)
	}
	return out, nil
}

func (t TrustedProxies) trusts(ip net.IP) bool {
	if ip == nil {
		return false
	}
	for _, n := range t {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ClientIP: адрес соединения. Заголовки прокси учитываются, только если
// соединение пришло от доверенного прокси; X-Forwarded-For читается справа
// налево до первого недоверенного адреса.
func (t TrustedProxies) ClientIP(r *http.Request) string {
	peer := remoteHost(r)
	if !t.trusts(net.ParseIP(peer)) {
		return peer
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			ip := net.ParseIP(hop)
			if ip == nil {
				break
			}
			if !t.trusts(ip) || i == 0 {
				return hop
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(ip) != nil {
		return ip
	}
	return peer
}

// RequestID присваивает запросу идентификатор (или берёт присланный клиентом)
// и запоминает IP клиента для аудита и лимитов.
func (t TrustedProxies) RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if rid == "" || len(rid) > 64 {
			rid = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, rid)

		ctx := reqctx.WithRequestID(r.Context(), rid)
		ctx = reqctx.WithClientIP(ctx, t.ClientIP(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestID без доверенных прокси.
func RequestID(next http.Handler) http.Handler {
	return TrustedProxies(nil).RequestID(next)
}

// ClientIP без доверенных прокси: всегда RemoteAddr.
func ClientIP(r *http.Request) string {
	return TrustedProxies(nil).ClientIP(r)
}

// SecureHeaders: базовые защитные заголовки для JSON API.
func SecureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "SAMEORIGIN")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("X-DNS-Prefetch-Control", "off")
		next.ServeHTTP(w, r)
	})
}
