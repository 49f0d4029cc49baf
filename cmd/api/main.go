package main

import "github.com/sairamandadi/emotion-based-Music-Recommender/internal/cli"

func main() {
	cli.Execute()
}
