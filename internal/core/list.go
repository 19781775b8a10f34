package core

import "slices"

// AddressList is an ordered collection of addresses, used for the
// map-resolver, map-server and proxy-ETR sets. Prepend is the only
// insertion mode, so iteration order is newest first; callers that want
// configuration order must reverse on read.
type AddressList struct {
	addrs []Address
}

// Prepend inserts a at the front of the list. Unspecified addresses are
// rejected so a failed parse cannot end up on a server list.
func (l *AddressList) Prepend(a Address) error {
	if a.IsUnspecified() {
		return ErrNilAddress
	}
	l.addrs = slices.Insert(l.addrs, 0, a)
	return nil
}

// Len returns the number of addresses in the list.
func (l *AddressList) Len() int { return len(l.addrs) }

// Addrs returns the addresses newest first. The slice is a copy.
func (l *AddressList) Addrs() []Address {
	return slices.Clone(l.addrs)
}

// FirstByFamily returns the first address of the given family in list
// order, or false if the list holds none.
func (l *AddressList) FirstByFamily(f Family) (Address, bool) {
	for _, a := range l.addrs {
		if a.Family() == f {
			return a, true
		}
	}
	return Address{}, false
}

// Clear drops every address. The list is reusable afterwards but starts
// empty.
func (l *AddressList) Clear() {
	l.addrs = nil
}

// SelectMapResolver picks the resolver to query. IPv4 resolvers win when
// the host has a usable IPv4 control address, then IPv6 resolvers when it
// has a usable IPv6 one.
func SelectMapResolver(resolvers *AddressList, v4ok, v6ok bool) (Address, error) {
	if v4ok {
		if a, ok := resolvers.FirstByFamily(FamilyIPv4); ok {
			return a, nil
		}
	}
	if v6ok {
		if a, ok := resolvers.FirstByFamily(FamilyIPv6); ok {
			return a, nil
		}
	}
	return Address{}, ErrNoCompatibleResolver
}
