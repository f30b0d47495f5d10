package main

//go:generate swag init -g cmd/server/main.go -o docs

// @title           Predictably API
// @version         0.1.0
// @description     Daily questions, crowd votes, and average predictions.
// @host            localhost:8080
// @BasePath        /
// @schemes         http
