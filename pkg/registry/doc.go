// Package registry tracks live client transport connections per user
// identity and fans push messages out to every open handle. Send failures
// are isolated per connection: one broken handle never blocks delivery to
// the user's other devices or fails the caller.
package registry
