/*
Package mock is the entry point of the mock engine.

An Engine validates mock configurations, installs the provider of the mocked blockchain on its
environment and registers the call rules the configuration declares. Calls the provider receives
are answered by the newest matching rule and recorded on the handle returned by Mock.

# Usage

	e := mock.NewTest(t)

	h := e.MustMock(t, evm.Config{
		Blockchain: "ethereum",
		Wallet:     mock.MetaMask,
		Request: &evm.Request{
			To:     "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
			API:    erc20ABI,
			Method: "decimals",
			Return: 6,
		},
	})

	p, _ := e.EVM()
	// code under test calls p.Request(ctx, "eth_call", ...)

	require.True(t, h.CalledOnce())

A bare blockchain identifier installs a provider without any rule, so every call it receives fails
with an error asking for a mock:

	e.MustMock(t, "bsc")

# Configuration Errors

Configurations are validated before anything is registered. A rejected configuration leaves the
engine unchanged and returns a *ConfigurationError:

	_, err := e.Mock(evm.Config{Blockchain: "ethereum", Request: &evm.Request{Method: "balanceOf"}})
	// Web3Mock: Please provide the api for the request: {"blockchain":"ethereum","request":{"api":["PLACE API HERE"],"method":"balanceOf"}}

# Fixtures

Mocks can be declared in YAML or TOML files, see package fixture, and loaded with
Engine.LoadFixtures or through NewFromConfig.
*/
package mock
