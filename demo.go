package wdb

// DemoWorld builds the sample tree: database "hello" with collection "test"
// holding a="Hello" and c="Github", after b was added and deleted and c was
// modified from "Gitchub".
func DemoWorld() *World {
	c := NewCollection("test")
	ensure(c.Add("a", String("Hello")))
	ensure(c.Add("b", U8(11)))
	ensure(c.Add("c", String("Gitchub")))
	c.Delete("b")
	ensure(c.Modify("c", String("Github")))

	db := NewDatabase("hello")
	ensure(db.AddCollection(c))

	w := NewWorld()
	ensure(w.AddDatabase(db))
	return w
}
