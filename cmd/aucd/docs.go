package main

//go:generate swag init -g cmd/aucd/main.go -o docs

// @title           Auction Settlement API
// @version         0.1.0
// @description     Declining-price auctions with ledger-backed settlement.
// @host            localhost:8080
// @BasePath        /
// @schemes         http
