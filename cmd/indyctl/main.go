package main

import (
	"fmt"
	"os"

	"github.com/fulldump/goconfig"
	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/fulldump/indyctl/bootstrap"
	"github.com/fulldump/indyctl/configuration"
)

var banner = `
 _           _            _   _ 
(_)_ __   __| |_   _  ___| |_| |
| | '_ \ / _' | | | |/ __| __| |
| | | | | (_| | |_| | (__| |_| |
|_|_| |_|\__,_|\__, |\___|\__|_|
               |___/    version ` + bootstrap.VERSION + `
`

func main() {

	c := configuration.Default()
	goconfig.Read(&c)

	if c.Version {
		fmt.Println("Version:", bootstrap.VERSION)
		return
	}

	if c.ShowBanner {
		fmt.Println(banner)
	}

	if c.ShowConfig {
		json.MarshalWrite(os.Stdout, c, jsontext.WithIndent("    "))
		fmt.Println()
	}

	start, _, err := bootstrap.Bootstrap(&c)
	if err != nil {
		fmt.Println("ERROR:", err.Error())
		os.Exit(-1)
	}

	start()
}
