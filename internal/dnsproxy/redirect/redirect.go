// Package redirect manages the iptables rules that transparently divert
// port 53 traffic to the dnsblockd listener.
//
// A dedicated NAT chain keeps every rule dnsblockd owns in one place, so
// removal never touches rules installed by other software. User-supplied
// extra rules from the configuration are instantiated with fasttemplate
// variables ({{chain}}, {{dns_ip}}, {{dns_port}}, {{interface}}) before
// being applied.
package redirect

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/coreos/go-iptables/iptables"
	"github.com/valyala/fasttemplate"
	"github.com/vishvananda/netlink"

	"github.com/dnsblockd/dnsblockd/internal/config"
	"github.com/dnsblockd/dnsblockd/internal/log"
)

const (
	// dnsRedirectChainName is the name of the iptables chain for DNS redirection.
	dnsRedirectChainName = "DNSBLOCKD_DNS"

	// dnsSourcePort is the DNS port we are redirecting from.
	dnsSourcePort = 53
)

// Redirect manages the DNS interception rules for the configured interfaces.
type Redirect struct {
	interfaces []string
	extraRules []*config.IPTablesRule

	dnsIP   string
	dnsPort uint16

	ipt4 *iptables.IPTables
	ipt6 *iptables.IPTables
}

// New creates a redirect manager from the application config.
// The DNS listener address is taken from cfg.DNS.Listen.
func New(cfg *config.Config) (*Redirect, error) {
	host, portStr, err := net.SplitHostPort(cfg.DNS.Listen)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DNS listen address: %w", err)
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DNS listen port: %w", err)
	}

	ipt4, err := iptables.NewWithProtocol(iptables.ProtocolIPv4)
	if err != nil {
		return nil, fmt.Errorf("failed to create iptables (IPv4): %w", err)
	}

	ipt6, err := iptables.NewWithProtocol(iptables.ProtocolIPv6)
	if err != nil {
		// IPv6 might not be available, that's okay
		log.Debugf("IPv6 iptables not available: %v", err)
		ipt6 = nil
	}

	r := &Redirect{
		interfaces: cfg.Redirect.Interfaces,
		dnsIP:      host,
		dnsPort:    uint16(port),
		ipt4:       ipt4,
		ipt6:       ipt6,
	}
	r.extraRules = r.processRules(cfg.Redirect.IPTablesRules)

	return r, nil
}

// processRules expands template variables in the user-supplied rules.
// Rules referencing {{interface}} are instantiated once per configured
// interface, everything else once.
func (r *Redirect) processRules(templates []*config.IPTablesRule) []*config.IPTablesRule {
	var rules []*config.IPTablesRule

	for _, tmpl := range templates {
		if r.usesInterface(tmpl) {
			for _, iface := range r.interfaces {
				rules = append(rules, r.expandRule(tmpl, iface))
			}
		} else {
			rules = append(rules, r.expandRule(tmpl, ""))
		}
	}

	return rules
}

func (r *Redirect) usesInterface(rule *config.IPTablesRule) bool {
	marker := "{{" + config.IPTABLES_TMPL_INTERFACE + "}}"
	if strings.Contains(rule.Chain, marker) || strings.Contains(rule.Table, marker) {
		return true
	}
	for _, part := range rule.Rule {
		if strings.Contains(part, marker) {
			return true
		}
	}
	return false
}

func (r *Redirect) expandRule(rule *config.IPTablesRule, iface string) *config.IPTablesRule {
	ruleSpecs := make([]string, len(rule.Rule))
	for i, part := range rule.Rule {
		ruleSpecs[i] = r.expandRulePart(part, iface)
	}

	return &config.IPTablesRule{
		Chain: r.expandRulePart(rule.Chain, iface),
		Table: r.expandRulePart(rule.Table, iface),
		Rule:  ruleSpecs,
	}
}

func (r *Redirect) expandRulePart(template string, iface string) string {
	if !strings.Contains(template, "{{") {
		return template
	}

	t := fasttemplate.New(template, "{{", "}}")
	return t.ExecuteString(map[string]interface{}{
		config.IPTABLES_TMPL_CHAIN:     dnsRedirectChainName,
		config.IPTABLES_TMPL_DNS_IP:    r.dnsIP,
		config.IPTABLES_TMPL_DNS_PORT:  strconv.FormatUint(uint64(r.dnsPort), 10),
		config.IPTABLES_TMPL_INTERFACE: iface,
	})
}

// Apply installs the interception rules for every configured interface.
// Interfaces that do not currently exist are skipped with a warning, so a
// router booting with a LAN bridge still coming up does not fail hard.
func (r *Redirect) Apply() error {
	ifaces := r.resolveInterfaces()
	if len(ifaces) == 0 {
		return fmt.Errorf("none of the configured interfaces exist: %v", r.interfaces)
	}

	if err := r.createChainAndRules(r.ipt4, ifaces); err != nil {
		return fmt.Errorf("failed to create IPv4 rules: %w", err)
	}
	if r.ipt6 != nil {
		if err := r.createChainAndRules(r.ipt6, ifaces); err != nil {
			return fmt.Errorf("failed to create IPv6 rules: %w", err)
		}
	}

	if err := r.applyExtraRules(); err != nil {
		return err
	}

	log.Infof("DNS redirection active on %v (port %d -> %d)", ifaces, dnsSourcePort, r.dnsPort)
	return nil
}

// Remove deletes all interception rules installed by Apply.
func (r *Redirect) Remove() error {
	var errs []error

	if err := r.removeExtraRules(); err != nil {
		errs = append(errs, err)
	}

	if err := r.deleteChainAndRules(r.ipt4); err != nil {
		errs = append(errs, fmt.Errorf("IPv4: %w", err))
	}
	if r.ipt6 != nil {
		if err := r.deleteChainAndRules(r.ipt6); err != nil {
			errs = append(errs, fmt.Errorf("IPv6: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during cleanup: %v", errs)
	}

	return nil
}

// resolveInterfaces returns the configured interfaces that currently exist,
// logging their addresses for diagnostics.
func (r *Redirect) resolveInterfaces() []string {
	var existing []string

	for _, name := range r.interfaces {
		link, err := netlink.LinkByName(name)
		if err != nil {
			log.Warnf("Interface %s not found, skipping DNS redirection for it: %v", name, err)
			continue
		}

		addrs, err := netlink.AddrList(link, netlink.FAMILY_ALL)
		if err != nil {
			log.Debugf("Failed to get addresses for %s: %v", name, err)
		} else {
			for _, addr := range addrs {
				if addr.IP.IsLoopback() {
					continue
				}
				log.Debugf("Intercepting DNS on %s (%s)", name, addr.IP)
			}
		}

		existing = append(existing, name)
	}

	return existing
}

func (r *Redirect) createChainAndRules(ipt *iptables.IPTables, ifaces []string) error {
	// Create chain
	if err := ipt.NewChain("nat", dnsRedirectChainName); err != nil {
		// Check if chain already exists
		if eerr, ok := err.(*iptables.Error); !(ok && eerr.ExitStatus() == 1) {
			return fmt.Errorf("failed to create chain: %w", err)
		}
	}

	for _, iface := range ifaces {
		for _, proto := range []string{"udp", "tcp"} {
			rule := []string{
				"-i", iface,
				"-p", proto,
				"--dport", strconv.Itoa(dnsSourcePort),
				"-j", "REDIRECT",
				"--to-port", strconv.Itoa(int(r.dnsPort)),
			}
			if err := ipt.AppendUnique("nat", dnsRedirectChainName, rule...); err != nil {
				return fmt.Errorf("failed to add %s rule for %s: %w", proto, iface, err)
			}
		}
	}

	// Link chain to PREROUTING
	if err := ipt.InsertUnique("nat", "PREROUTING", 1, "-j", dnsRedirectChainName); err != nil {
		return fmt.Errorf("failed to link chain: %w", err)
	}

	return nil
}

func (r *Redirect) deleteChainAndRules(ipt *iptables.IPTables) error {
	// Unlink from PREROUTING
	if err := ipt.DeleteIfExists("nat", "PREROUTING", "-j", dnsRedirectChainName); err != nil {
		log.Debugf("Failed to unlink chain: %v", err)
	}

	// Clear chain
	if err := ipt.ClearChain("nat", dnsRedirectChainName); err != nil {
		log.Debugf("Failed to clear chain: %v", err)
	}

	// Delete chain
	if err := ipt.DeleteChain("nat", dnsRedirectChainName); err != nil {
		log.Debugf("Failed to delete chain: %v", err)
	}

	return nil
}

func (r *Redirect) applyExtraRules() error {
	for _, rule := range r.extraRules {
		exists, err := r.ipt4.Exists(rule.Table, rule.Chain, rule.Rule...)
		if err != nil {
			return fmt.Errorf("failed to check rule [%v]: %w", rule, err)
		}
		if exists {
			continue
		}

		log.Infof("Adding iptables rule [%v]", rule)
		if err := r.ipt4.Append(rule.Table, rule.Chain, rule.Rule...); err != nil {
			return fmt.Errorf("failed to add rule [%v]: %w", rule, err)
		}
	}
	return nil
}

func (r *Redirect) removeExtraRules() error {
	for _, rule := range r.extraRules {
		exists, err := r.ipt4.Exists(rule.Table, rule.Chain, rule.Rule...)
		if err != nil {
			return fmt.Errorf("failed to check rule [%v]: %w", rule, err)
		}
		if !exists {
			continue
		}

		log.Infof("Deleting iptables rule [%v]", rule)
		if err := r.ipt4.Delete(rule.Table, rule.Chain, rule.Rule...); err != nil {
			return fmt.Errorf("failed to delete rule [%v]: %w", rule, err)
		}
	}
	return nil
}
