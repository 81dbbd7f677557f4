package urdf

import (
	"encoding/xml"
	"fmt"
)

// ParsedJoint is the topology-relevant slice of a serialized joint.
type ParsedJoint struct {
	Name   string
	Type   string
	Parent string
	Child  string
}

// ParsedRobot is the structural view of a URDF document: names and
// topology only. Extension elements outside link/joint are ignored.
type ParsedRobot struct {
	Name   string
	Links  []string
	Joints []ParsedJoint
}

type robotXML struct {
	XMLName xml.Name `xml:"robot"`
	Name    string   `xml:"name,attr"`
	Links   []struct {
		Name string `xml:"name,attr"`
	} `xml:"link"`
	Joints []struct {
		Name   string `xml:"name,attr"`
		Type   string `xml:"type,attr"`
		Parent struct {
			Link string `xml:"link,attr"`
		} `xml:"parent"`
		Child struct {
			Link string `xml:"link,attr"`
		} `xml:"child"`
	} `xml:"joint"`
}

// Parse reads back the structure of a URDF document.
func Parse(data []byte) (*ParsedRobot, error) {
	var doc robotXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("urdf: parse: %w", err)
	}
	out := &ParsedRobot{Name: doc.Name}
	for _, l := range doc.Links {
		out.Links = append(out.Links, l.Name)
	}
	for _, j := range doc.Joints {
		out.Joints = append(out.Joints, ParsedJoint{
			Name:   j.Name,
			Type:   j.Type,
			Parent: j.Parent.Link,
			Child:  j.Child.Link,
		})
	}
	return out, nil
}
