// Package utils exposes the configuration and logging plumbing shared by the
// multigit commands: a Viper-backed ConfigurationLoader, a zap LoggerFactory
// and a SynchronizedWriter that keeps concurrent writers from interleaving.
package utils
