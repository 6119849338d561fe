package redirect

import (
	"testing"

	"github.com/dnsblockd/dnsblockd/internal/config"
)

func testRedirect() *Redirect {
	return &Redirect{
		interfaces: []string{"br0", "br1"},
		dnsIP:      "192.168.1.1",
		dnsPort:    5353,
	}
}

func TestExpandRulePart_TemplateSubstitution(t *testing.T) {
	r := testRedirect()

	tests := []struct {
		name     string
		template string
		iface    string
		expected string
	}{
		{
			name:     "No template variables",
			template: "INPUT -j ACCEPT",
			expected: "INPUT -j ACCEPT",
		},
		{
			name:     "Chain variable",
			template: "-A PREROUTING -j {{chain}}",
			expected: "-A PREROUTING -j DNSBLOCKD_DNS",
		},
		{
			name:     "DNS IP variable",
			template: "-d {{dns_ip}} -j ACCEPT",
			expected: "-d 192.168.1.1 -j ACCEPT",
		},
		{
			name:     "DNS port variable",
			template: "--to-port {{dns_port}}",
			expected: "--to-port 5353",
		},
		{
			name:     "Interface variable",
			template: "-i {{interface}} -j REDIRECT",
			iface:    "br0",
			expected: "-i br0 -j REDIRECT",
		},
		{
			name:     "Multiple variables",
			template: "-i {{interface}} -p udp --dport 53 -j DNAT --to {{dns_ip}}:{{dns_port}}",
			iface:    "br1",
			expected: "-i br1 -p udp --dport 53 -j DNAT --to 192.168.1.1:5353",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := r.expandRulePart(tt.template, tt.iface)
			if result != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestProcessRules_PerInterfaceExpansion(t *testing.T) {
	r := testRedirect()

	templates := []*config.IPTablesRule{
		{
			Chain: "PREROUTING",
			Table: "nat",
			Rule:  []string{"-i", "{{interface}}", "-p", "udp", "--dport", "53", "-j", "{{chain}}"},
		},
	}

	rules := r.processRules(templates)
	if len(rules) != 2 {
		t.Fatalf("Expected one rule per interface (2), got %d", len(rules))
	}

	if rules[0].Rule[1] != "br0" || rules[1].Rule[1] != "br1" {
		t.Errorf("Expected per-interface instantiation, got %v and %v", rules[0].Rule, rules[1].Rule)
	}
	if rules[0].Rule[7] != "DNSBLOCKD_DNS" {
		t.Errorf("Expected chain substitution, got %q", rules[0].Rule[7])
	}
}

func TestProcessRules_NoInterfaceVariable(t *testing.T) {
	r := testRedirect()

	templates := []*config.IPTablesRule{
		{
			Chain: "FORWARD",
			Table: "filter",
			Rule:  []string{"-p", "udp", "--dport", "{{dns_port}}", "-j", "ACCEPT"},
		},
	}

	rules := r.processRules(templates)
	if len(rules) != 1 {
		t.Fatalf("Expected rule without {{interface}} to expand once, got %d", len(rules))
	}
	if rules[0].Rule[3] != "5353" {
		t.Errorf("Expected port substitution, got %q", rules[0].Rule[3])
	}
}

func TestProcessRules_Empty(t *testing.T) {
	r := testRedirect()

	if rules := r.processRules(nil); len(rules) != 0 {
		t.Errorf("Expected no rules, got %d", len(rules))
	}
}
