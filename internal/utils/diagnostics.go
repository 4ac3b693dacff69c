package utils

import (
	"fmt"
	"net"
	"strings"
)

const linkLocalPrefix = "169.254."

// LocalIPs returns the non-loopback IPv4 addresses of this host.
// Link-local addresses are only kept when nothing routable exists.
func LocalIPs() []string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return nil
	}
	var ips []string
	for _, addr := range addrs {
		ipnet, ok := addr.(*net.IPNet)
		if !ok || ipnet.IP.IsLoopback() || ipnet.IP.To4() == nil {
			continue
		}
		ips = append(ips, ipnet.IP.String())
	}
	return preferRoutable(ips)
}

func preferRoutable(ips []string) []string {
	var routable []string
	for _, ip := range ips {
		if !strings.HasPrefix(ip, linkLocalPrefix) {
			routable = append(routable, ip)
		}
	}
	if len(routable) == 0 {
		return ips
	}
	return routable
}

// PollURLs lists the check-for-update endpoint as devices on the local
// network would reach it, one per address.
func PollURLs(ips []string, port string) []string {
	urls := make([]string, 0, len(ips))
	for _, ip := range ips {
		urls = append(urls, fmt.Sprintf("http://%s:%s/api/check-for-update/<deviceId>", ip, port))
	}
	return urls
}
