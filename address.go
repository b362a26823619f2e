//go:build linux || freebsd || dragonfly || netbsd || openbsd || darwin
// +build linux freebsd dragonfly netbsd openbsd darwin

package netcore

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"golang.org/x/sys/unix"
)

// Family distinguishes IPv4 from IPv6 bind targets.
type Family int

const (
	// FamilyUnspecified lets resolution pick a family from the host string,
	// falling back to wildcard candidates for both families when host is empty.
	FamilyUnspecified Family = iota
	FamilyIPv4
	FamilyIPv6
)

func (f Family) String() string {
	switch f {
	case FamilyIPv4:
		return "ipv4"
	case FamilyIPv6:
		return "ipv6"
	default:
		return "unspecified"
	}
}

// Address is a (host, port, family) triple. Port 0 asks the kernel for
// an ephemeral port.
type Address struct {
	Host   string
	Port   uint16
	Family Family
}

func (a Address) String() string {
	return net.JoinHostPort(a.Host, strconv.Itoa(int(a.Port)))
}

// bindCandidate is one resolved (family, sockaddr) pair that bind walks
// in order.
type bindCandidate struct {
	family   int // unix.AF_INET or unix.AF_INET6
	ip       net.IP
	port     int
}

// resolveCandidates expands an Address into bindCandidate records for
// stream sockets with passive intent (i.e. suitable for bind+listen,
// not connect). An empty host yields the wildcard address for every
// family the Address.Family allows.
func resolveCandidates(ctx context.Context, addr Address) ([]bindCandidate, error) {
	if addr.Host == "" {
		return wildcardCandidates(addr), nil
	}

	ips, err := net.DefaultResolver.LookupIPAddr(ctx, addr.Host)
	if err != nil {
		return nil, fmt.Errorf("netcore: resolve %q: %w", addr.Host, err)
	}

	var out []bindCandidate
	for _, ipa := range ips {
		fam, ok := familyOf(ipa.IP, addr.Family)
		if !ok {
			continue
		}
		out = append(out, bindCandidate{family: fam, ip: ipa.IP, port: int(addr.Port)})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("netcore: no address records for %q matched family %s", addr.Host, addr.Family)
	}
	return out, nil
}

func wildcardCandidates(addr Address) []bindCandidate {
	port := int(addr.Port)
	switch addr.Family {
	case FamilyIPv4:
		return []bindCandidate{{family: unix.AF_INET, ip: net.IPv4zero, port: port}}
	case FamilyIPv6:
		return []bindCandidate{{family: unix.AF_INET6, ip: net.IPv6unspecified, port: port}}
	default:
		return []bindCandidate{
			{family: unix.AF_INET6, ip: net.IPv6unspecified, port: port},
			{family: unix.AF_INET, ip: net.IPv4zero, port: port},
		}
	}
}

func familyOf(ip net.IP, want Family) (int, bool) {
	is4 := ip.To4() != nil
	switch want {
	case FamilyIPv4:
		if !is4 {
			return 0, false
		}
		return unix.AF_INET, true
	case FamilyIPv6:
		if is4 {
			return 0, false
		}
		return unix.AF_INET6, true
	default:
		if is4 {
			return unix.AF_INET, true
		}
		return unix.AF_INET6, true
	}
}
