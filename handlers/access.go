package handlers

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// AccessList restricts the console to client addresses. Deny entries win
// over allow entries; an empty allow list admits everything not denied.
type AccessList struct {
	allow []*net.IPNet
	deny  []*net.IPNet
}

// NewAccessList parses CIDRs or bare IPs. It returns nil when both lists are
// empty.
func NewAccessList(allow, deny []string) (*AccessList, error) {
	var (
		acl AccessList
		err error
	)
	if acl.allow, err = parseNets(allow); err != nil {
		return nil, fmt.Errorf("invalid ADMIN_ALLOW_CIDRS: %w", err)
	}
	if acl.deny, err = parseNets(deny); err != nil {
		return nil, fmt.Errorf("invalid ADMIN_DENY_CIDRS: %w", err)
	}
	if len(acl.allow) == 0 && len(acl.deny) == 0 {
		return nil, nil
	}
	return &acl, nil
}

// Allows reports whether ip may reach the console. A nil list allows all.
func (a *AccessList) Allows(ip net.IP) bool {
	if a == nil {
		return true
	}
	if ip == nil {
		return false
	}
	for _, n := range a.deny {
		if n.Contains(ip) {
			return false
		}
	}
	if len(a.allow) == 0 {
		return true
	}
	for _, n := range a.allow {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// Middleware rejects requests from addresses the list does not allow.
func (a *AccessList) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.Allows(net.ParseIP(c.ClientIP())) {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}

func parseNets(list []string) ([]*net.IPNet, error) {
	var out []*net.IPNet
	for _, raw := range list {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		n, err := parseCIDROrIP(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func parseCIDROrIP(value string) (*net.IPNet, error) {
	if strings.Contains(value, "/") {
		_, n, err := net.ParseCIDR(value)
		if err != nil {
			return nil, fmt.Errorf("invalid CIDR %q", value)
		}
		return n, nil
	}

	ip := net.ParseIP(value)
	if ip == nil {
		return nil, fmt.Errorf("invalid IP %q", value)
	}
	if ip4 := ip.To4(); ip4 != nil {
		return &net.IPNet{IP: ip4, Mask: net.CIDRMask(32, 32)}, nil
	}
	return &net.IPNet{IP: ip, Mask: net.CIDRMask(128, 128)}, nil
}
