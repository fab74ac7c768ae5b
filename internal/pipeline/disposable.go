package pipeline

import (
	"strings"

	"golang.org/x/net/publicsuffix"
)

var defaultDisposableDomains = []string{
	"10minutemail.com",
	"20minutemail.com",
	"discard.email",
	"dispostable.com",
	"emailondeck.com",
	"fakeinbox.com",
	"getairmail.com",
	"getnada.com",
	"guerrillamail.com",
	"guerrillamail.net",
	"guerrillamailblock.com",
	"maildrop.cc",
	"mailinator.com",
	"mailnesia.com",
	"mintemail.com",
	"mohmal.com",
	"moakt.com",
	"sharklasers.com",
	"spamgourmet.com",
	"temp-mail.org",
	"tempmail.com",
	"tempmailo.com",
	"throwawaymail.com",
	"trashmail.com",
	"yopmail.com",
}

// DisposableDomains answers whether an address belongs to a throwaway provider.
type DisposableDomains struct {
	set map[string]struct{}
}

// NewDisposableDomains merges extra domains over the built-in list.
func NewDisposableDomains(extra []string) *DisposableDomains {
	d := &DisposableDomains{set: map[string]struct{}{}}
	for _, list := range [][]string{defaultDisposableDomains, extra} {
		for _, domain := range list {
			domain = strings.ToLower(strings.TrimSpace(domain))
			if domain != "" {
				d.set[domain] = struct{}{}
			}
		}
	}
	return d
}

// Contains checks the domain itself and its registrable domain, so
// "inbox.mailinator.com" counts as disposable.
func (d *DisposableDomains) Contains(domain string) bool {
	if d == nil || domain == "" {
		return false
	}
	domain = strings.ToLower(domain)
	if _, ok := d.set[domain]; ok {
		return true
	}
	etld1, err := publicsuffix.EffectiveTLDPlusOne(domain)
	if err != nil || etld1 == domain {
		return false
	}
	_, ok := d.set[etld1]
	return ok
}
