package config

import (
	up "go.mau.fi/util/configupgrade"
)

// doUpgrade copies forward every field an older config on disk set,
// backfilling anything new with the example config's default — the same
// shape as bridgeconfig.doUpgrade in the teacher repo.
func doUpgrade(helper up.Helper) {
	helper.Copy(up.Bool, "selser")
	helper.Copy(up.Bool, "scrub_wikitext")

	// Config versions before the oracle cache existed had no such
	// section; Copy is a no-op when the key is missing on disk, so the
	// example's defaults (cache disabled) win.
	helper.Copy(up.Bool, "oracle_cache", "enabled")
	helper.Copy(up.Str, "oracle_cache", "dialect")
	helper.Copy(up.Str, "oracle_cache", "uri")

	helper.Copy(up.Map, "logging")
}

// Upgrader is the registered config upgrader for this package's schema.
var Upgrader = up.SimpleUpgrader(doUpgrade)
