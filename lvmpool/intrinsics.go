package lvmpool

import (
	"litenvm.org/litenvm/spec"
)

// intrinsicEntries are indexed by offset from spec.IntrinsicBase
var intrinsicEntries = func() [spec.IntrinsicCount]Entry {
	str := &Class{Name: "String"}
	console := &Class{Name: "Console", Methods: 1}
	printLn := &Method{Name: "println", Class: spec.ClassConsole, Args: 2}
	sb := &Class{Name: "StringBuilder", Fields: 1, Methods: 4}
	appendString := &Method{Name: "appendString", Class: spec.ClassStringBuilder, Args: 2}
	appendInt := &Method{Name: "appendInt", Class: spec.ClassStringBuilder, Args: 2}
	appendBool := &Method{Name: "appendBool", Class: spec.ClassStringBuilder, Args: 2}
	toString := &Method{Name: "toString", Class: spec.ClassStringBuilder, Args: 1}

	str.VTable = NewVTable(0)
	console.VTable = NewVTable(2)
	sb.VTable = NewVTable(8)
	mustPut(console.VTable, printLn.Name, spec.MethodConsolePrintln)
	mustPut(sb.VTable, appendString.Name, spec.MethodStringBuilderAppendString)
	mustPut(sb.VTable, appendInt.Name, spec.MethodStringBuilderAppendInt)
	mustPut(sb.VTable, appendBool.Name, spec.MethodStringBuilderAppendBool)
	mustPut(sb.VTable, toString.Name, spec.MethodStringBuilderToString)

	return [spec.IntrinsicCount]Entry{
		str,
		console,
		printLn,
		sb,
		appendString,
		appendInt,
		appendBool,
		toString,
	}
}()

func mustPut(vt *VTable, name string, index uint32) {
	if err := vt.Put(name, index); err != nil {
		panic(err)
	}
}

// IntrinsicClass returns the built in class at a reserved index, or nil.
func IntrinsicClass(index uint32) *Class {
	if !spec.IsIntrinsic(index) {
		return nil
	}
	c, _ := intrinsicEntries[index-spec.IntrinsicBase].(*Class)
	return c
}
