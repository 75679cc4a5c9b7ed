package postgresengine

// NewRuleStoreWithAdapter exposes the adapter based constructor to the tests.
var NewRuleStoreWithAdapter = newRuleStore
