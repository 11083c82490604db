package schema

import "github.com/google/uuid"

// idNamespace roots every derived identifier.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/tordrt/schemaexport"))

// ClassID returns the stable identifier of a class name. The same name
// always yields the same identifier, on every platform.
func ClassID(class string) string {
	return uuid.NewSHA1(idNamespace, []byte(class)).String()
}

// PropertyID returns the stable identifier of a property within its class.
func PropertyID(class, property string) string {
	return uuid.NewSHA1(uuid.MustParse(ClassID(class)), []byte(property)).String()
}

func assignIDs(classes []ClassDescriptor) {
	for i := range classes {
		c := &classes[i]
		classNS := uuid.NewSHA1(idNamespace, []byte(c.Name))
		c.ID = classNS.String()
		for j := range c.Properties {
			c.Properties[j].ID = uuid.NewSHA1(classNS, []byte(c.Properties[j].Name)).String()
		}
	}
}
