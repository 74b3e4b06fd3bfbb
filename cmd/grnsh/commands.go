package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	networks "github.com/ekernf01/pereggrn-networks"
)

// commandNames feeds tab completion.
var commandNames = []string{
	"sources", "subnets", "use", "open", "all", "regulators", "targets",
	"values", "count", "save", "info", "help", "quit", "exit",
}

const helpText = `Commands:
  sources                 list catalog sources and readiness
  subnets <source>        list subnetworks of a source
  use <source> [sub...]   open a source (optionally specific subnetworks)
  open <file>...          open explicit parquet partitions
  all                     print every edge of the open network
  regulators <gene>       edges targeting the given gene
  targets <tf>            edges regulated by the given factor
  values <field>          distinct regulator, target, or cell_type values
  count                   total number of edges
  save <path.parquet>     write the union to one parquet file
  info                    describe the open network
  help                    this text
  quit | exit             leave the shell`

// session holds the shell state: the lazily resolved collection location
// and the currently open network.
type session struct {
	root     string
	location *networks.Location
	network  *networks.LightNetwork
}

// loc resolves and caches the collection location.
func (s *session) loc() (*networks.Location, error) {
	if s.location != nil {
		return s.location, nil
	}
	var err error
	if s.root != "" {
		s.location, err = networks.NewLocation(s.root)
	} else {
		s.location, err = networks.LocationFromEnv()
	}
	return s.location, err
}

// open requires a network to be open.
func (s *session) open() (*networks.LightNetwork, error) {
	if s.network == nil {
		return nil, fmt.Errorf("no network open; run 'use <source>' or 'open <file>...' first")
	}
	return s.network, nil
}

// execute runs one input line and reports whether the shell should exit.
func (s *session) execute(input string) bool {
	fields := strings.Fields(input)
	cmd, args := fields[0], fields[1:]

	var err error
	switch cmd {
	case "help":
		fmt.Println(helpText)
	case "quit", "exit":
		return true
	case "sources":
		err = s.cmdSources()
	case "subnets":
		err = s.cmdSubnets(args)
	case "use":
		err = s.cmdUse(args)
	case "open":
		err = s.cmdOpen(args)
	case "all":
		err = s.cmdAll()
	case "regulators":
		err = s.cmdRegulators(args)
	case "targets":
		err = s.cmdTargets(args)
	case "values":
		err = s.cmdValues(args)
	case "count":
		err = s.cmdCount()
	case "save":
		err = s.cmdSave(args)
	case "info":
		err = s.cmdInfo()
	default:
		err = fmt.Errorf("unknown command %q; try 'help'", cmd)
	}
	if err != nil {
		fmt.Printf("error: %v\n", err)
	}
	return false
}

func (s *session) cmdSources() error {
	l, err := s.loc()
	if err != nil {
		return err
	}
	metas, err := networks.LoadMetadata(l, false)
	if err != nil {
		return err
	}
	for _, m := range metas {
		ready := m.IsReady
		if ready == "" {
			ready = "?"
		}
		fmt.Printf("%s\t%s\n", m.Name, ready)
	}
	return nil
}

func (s *session) cmdSubnets(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: subnets <source>")
	}
	l, err := s.loc()
	if err != nil {
		return err
	}
	subnets, err := networks.ListSubnetworks(l, args[0])
	if err != nil {
		return err
	}
	for _, sub := range subnets {
		fmt.Println(sub)
	}
	return nil
}

func (s *session) cmdUse(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: use <source> [subnetwork...]")
	}
	l, err := s.loc()
	if err != nil {
		return err
	}
	n, err := networks.Open(networks.Options{
		Location:    l,
		Source:      args[0],
		Subnetworks: args[1:],
	})
	if err != nil {
		return err
	}
	s.network = n
	fmt.Printf("opened %d partitions of %s\n", len(n.Files()), args[0])
	return nil
}

func (s *session) cmdOpen(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: open <file>...")
	}
	n, err := networks.Open(networks.Options{Files: args})
	if err != nil {
		return err
	}
	s.network = n
	fmt.Printf("opened %d partitions\n", len(n.Files()))
	return nil
}

func (s *session) cmdAll() error {
	n, err := s.open()
	if err != nil {
		return err
	}
	edges, err := n.GetAll()
	if err != nil {
		return err
	}
	printEdges(n, edges)
	return nil
}

func (s *session) cmdRegulators(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: regulators <gene>")
	}
	n, err := s.open()
	if err != nil {
		return err
	}
	edges, err := n.GetRegulators(args[0])
	if err != nil {
		return err
	}
	printEdges(n, edges)
	return nil
}

func (s *session) cmdTargets(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: targets <tf>")
	}
	n, err := s.open()
	if err != nil {
		return err
	}
	edges, err := n.GetTargets(args[0])
	if err != nil {
		return err
	}
	printEdges(n, edges)
	return nil
}

func (s *session) cmdValues(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: values <regulator|target|cell_type>")
	}
	n, err := s.open()
	if err != nil {
		return err
	}
	values, err := n.GetAllOneField(args[0])
	if err != nil {
		return err
	}
	for _, v := range values {
		fmt.Println(v)
	}
	return nil
}

func (s *session) cmdCount() error {
	n, err := s.open()
	if err != nil {
		return err
	}
	count, err := n.GetNumEdges()
	if err != nil {
		return err
	}
	fmt.Println(count)
	return nil
}

func (s *session) cmdSave(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: save <path.parquet>")
	}
	n, err := s.open()
	if err != nil {
		return err
	}
	if err := n.Save(args[0]); err != nil {
		return err
	}
	fmt.Printf("saved to %s\n", args[0])
	return nil
}

func (s *session) cmdInfo() error {
	n, err := s.open()
	if err != nil {
		return err
	}
	fmt.Println(n.String())
	return nil
}

func printEdges(n *networks.LightNetwork, edges []networks.Edge) {
	w := os.Stdout
	if n.HasCellType() {
		fmt.Fprintln(w, "regulator\ttarget\tweight\tcell_type")
		for _, e := range edges {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				e.Regulator, e.Target, strconv.FormatFloat(e.Weight, 'g', -1, 64), e.CellType)
		}
		return
	}
	fmt.Fprintln(w, "regulator\ttarget\tweight")
	for _, e := range edges {
		fmt.Fprintf(w, "%s\t%s\t%s\n",
			e.Regulator, e.Target, strconv.FormatFloat(e.Weight, 'g', -1, 64))
	}
}
