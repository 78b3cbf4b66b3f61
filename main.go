package main

import "github.com/glisignoli/ai-yt-dlp-web/cmd"

func main() {
	cmd.Execute()
}
